package analytics

import (
	"log/slog"
	"math"

	"carmarket/internal/config"
	"carmarket/pkg/contracts/domain"
)

// Feature column names exposed by the feature table.
const (
	FeaturePriceMean     = "price_mean"
	FeaturePriceMin      = "price_min"
	FeaturePriceMax      = "price_max"
	FeatureTotalSales    = "total_sales"
	FeatureAvgSales      = "avg_sales"
	FeatureMaxSales      = "max_sales"
	FeatureYearsWithData = "years_with_data"
)

// DefaultOutlierColumns are scanned when the caller does not name any.
var DefaultOutlierColumns = []string{FeaturePriceMean, FeatureTotalSales, FeatureAvgSales}

// DefaultClusterFeatures feed the k-means segmentation.
var DefaultClusterFeatures = []string{FeaturePriceMean, FeatureTotalSales, FeatureAvgSales, FeatureMaxSales}

// DefaultCorrelationFeatures span both price and sales summaries.
var DefaultCorrelationFeatures = []string{
	FeaturePriceMean, FeaturePriceMin, FeaturePriceMax,
	FeatureTotalSales, FeatureAvgSales, FeatureMaxSales, FeatureYearsWithData,
}

// FeatureTable is a columnar view over the reconciled summaries, one
// row per catalog entry. Missing values are NaN.
type FeatureTable struct {
	Keys    []domain.CompositeKey
	columns map[string][]float64
}

// BuildFeatureTable derives the numeric feature columns from the
// price and sales summary tables. Models without price data carry NaN
// in the price columns; sales columns are always present (zero-fill).
func BuildFeatureTable(prices []domain.PriceRow, sales []domain.SalesSummary) *FeatureTable {
	salesByKey := make(map[domain.CompositeKey]domain.SalesSummary, len(sales))
	for _, s := range sales {
		salesByKey[s.Key] = s
	}

	n := len(prices)
	t := &FeatureTable{
		Keys:    make([]domain.CompositeKey, 0, n),
		columns: make(map[string][]float64, 7),
	}
	for _, name := range DefaultCorrelationFeatures {
		t.columns[name] = make([]float64, 0, n)
	}

	for _, row := range prices {
		t.Keys = append(t.Keys, row.Key)

		if row.Summary != nil {
			t.columns[FeaturePriceMean] = append(t.columns[FeaturePriceMean], row.Summary.Mean)
			t.columns[FeaturePriceMin] = append(t.columns[FeaturePriceMin], row.Summary.Min)
			t.columns[FeaturePriceMax] = append(t.columns[FeaturePriceMax], row.Summary.Max)
		} else {
			t.columns[FeaturePriceMean] = append(t.columns[FeaturePriceMean], math.NaN())
			t.columns[FeaturePriceMin] = append(t.columns[FeaturePriceMin], math.NaN())
			t.columns[FeaturePriceMax] = append(t.columns[FeaturePriceMax], math.NaN())
		}

		s := salesByKey[row.Key]
		t.columns[FeatureTotalSales] = append(t.columns[FeatureTotalSales], s.Total)
		t.columns[FeatureAvgSales] = append(t.columns[FeatureAvgSales], s.Mean)
		t.columns[FeatureMaxSales] = append(t.columns[FeatureMaxSales], s.Max)
		t.columns[FeatureYearsWithData] = append(t.columns[FeatureYearsWithData], float64(s.YearsWithData))
	}

	return t
}

// Column returns a feature column; ok is false for unknown names.
func (t *FeatureTable) Column(name string) ([]float64, bool) {
	col, ok := t.columns[name]
	return col, ok
}

// Len returns the number of rows.
func (t *FeatureTable) Len() int {
	return len(t.Keys)
}

// Analyzer runs the exploratory statistics over a feature table. All
// methods are pure functions of their inputs and safe for concurrent
// use.
type Analyzer struct {
	cfg    config.AnalyticsConfig
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer with the given tuning knobs.
func NewAnalyzer(cfg config.AnalyticsConfig, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "analytics")),
	}
}

// dropNaN returns values with NaN entries removed.
func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// quantile interpolates linearly between order statistics of sorted
// input.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
