package quality

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"carmarket/internal/config"
	"carmarket/internal/dataset"
	"carmarket/pkg/contracts/domain"
)

// sentinelValues are placeholder strings that count against
// consistency when they survive into a text column.
var sentinelValues = map[string]bool{
	"undefined": true,
	"unknown":   true,
	"null":      true,
	"none":      true,
	"n/a":       true,
	"na":        true,
	"tbd":       true,
	"-":         true,
}

// maxPlausiblePrice bounds entry prices considered valid. Anything
// above is treated as a data error rather than a luxury listing.
const maxPlausiblePrice = 10_000_000

// Reporter scores each dataset across five quality dimensions and
// turns breached thresholds into rule-based recommendations.
type Reporter struct {
	cfg     config.QualityConfig
	yearMin int
	yearMax int
	logger  *slog.Logger
}

// NewReporter creates a reporter using the configured dimension
// weights and the accepted model-year range.
func NewReporter(cfg config.QualityConfig, data config.DataConfig, logger *slog.Logger) *Reporter {
	return &Reporter{
		cfg:     cfg,
		yearMin: data.YearMin,
		yearMax: data.YearMax,
		logger:  logger.With(slog.String("component", "quality")),
	}
}

// Reports scores every loaded dataset. Absent datasets still get a
// report so consumers see the gap.
func (r *Reporter) Reports(ctx context.Context, tables *dataset.Tables) []domain.QualityReport {
	reports := []domain.QualityReport{
		r.catalogReport(tables.Catalog),
		r.priceReport(tables.Prices),
		r.salesReport(tables.Sales),
	}
	if tables.Trims != nil {
		reports = append(reports, r.trimReport(tables.Trims))
	}

	for _, rep := range reports {
		r.logger.InfoContext(ctx, "dataset scored",
			slog.String("dataset", rep.Dataset),
			slog.Float64("overall", rep.Overall),
			slog.String("rating", rep.Rating))
	}
	return reports
}

func (r *Reporter) catalogReport(entries []domain.CatalogEntry) domain.QualityReport {
	report := domain.QualityReport{Dataset: "catalog"}
	if len(entries) == 0 {
		return r.finish(report, "dataset is empty")
	}

	n := float64(len(entries))
	var missing, sentinels int
	seen := make(map[domain.CompositeKey]bool, len(entries))
	duplicates := 0
	for _, e := range entries {
		for _, field := range []string{e.Key.Automaker, e.Key.Genmodel, e.Key.GenmodelID} {
			if field == "" {
				missing++
			}
			if sentinelValues[strings.ToLower(field)] {
				sentinels++
			}
		}
		if seen[e.Key] {
			duplicates++
		}
		seen[e.Key] = true
	}

	report.Completeness = 100 * (1 - float64(missing)/(3*n))
	report.Uniqueness = 100 * float64(len(seen)) / n
	report.Consistency = clampScore(100 - 100*float64(sentinels)/(3*n))
	report.Validity = 100
	report.Accuracy = 100

	if missing > 0 {
		report.Findings = append(report.Findings, fmt.Sprintf("%d empty key fields", missing))
	}
	if duplicates > 0 {
		report.Findings = append(report.Findings, fmt.Sprintf("%d duplicate composite keys", duplicates))
	}
	if sentinels > 0 {
		report.Findings = append(report.Findings, fmt.Sprintf("%d sentinel values in key fields", sentinels))
	}
	return r.finish(report)
}

func (r *Reporter) priceReport(prices []dataset.PriceRecord) domain.QualityReport {
	report := domain.QualityReport{Dataset: "prices"}
	if len(prices) == 0 {
		return r.finish(report, "dataset is empty")
	}

	n := float64(len(prices))
	var missingID, badYears, badPrices int
	values := make([]float64, 0, len(prices))
	seen := make(map[string]bool, len(prices))
	for _, p := range prices {
		if p.GenmodelID == "" {
			missingID++
		}
		if p.Year < r.yearMin || p.Year > r.yearMax {
			badYears++
		}
		if p.Price <= 0 || p.Price > maxPlausiblePrice {
			badPrices++
		} else {
			values = append(values, p.Price)
		}
		seen[fmt.Sprintf("%s|%d", p.GenmodelID, p.Year)] = true
	}

	report.Completeness = 100 * (1 - float64(missingID)/n)
	report.Uniqueness = 100 * float64(len(seen)) / n
	report.Consistency = clampScore(100 - 100*float64(badYears)/n)
	report.Validity = clampScore(100 - 100*float64(badPrices)/n)
	report.Accuracy = clampScore(100 - 100*iqrOutlierRatio(values))

	if badYears > 0 {
		report.Findings = append(report.Findings,
			fmt.Sprintf("%d rows outside model years %d-%d", badYears, r.yearMin, r.yearMax))
	}
	if badPrices > 0 {
		report.Findings = append(report.Findings, fmt.Sprintf("%d non-positive or implausible prices", badPrices))
	}
	return r.finish(report)
}

func (r *Reporter) salesReport(sales *dataset.SalesTable) domain.QualityReport {
	report := domain.QualityReport{Dataset: "sales"}
	if sales == nil || len(sales.Rows) == 0 {
		return r.finish(report, "dataset is empty")
	}

	var cells, missing int
	var totals []float64
	seen := make(map[string]bool, len(sales.Rows))
	sentinels := 0
	for _, row := range sales.Rows {
		var total float64
		for _, v := range row.Volumes {
			cells++
			if v == dataset.MissingVolume {
				missing++
				continue
			}
			total += float64(v)
		}
		totals = append(totals, total)
		seen[row.GenmodelID] = true
		if sentinelValues[strings.ToLower(row.Automaker)] || sentinelValues[strings.ToLower(row.Genmodel)] {
			sentinels++
		}
	}

	n := float64(len(sales.Rows))
	report.Completeness = 100
	if cells > 0 {
		report.Completeness = 100 * (1 - float64(missing)/float64(cells))
	}
	report.Uniqueness = 100 * float64(len(seen)) / n
	report.Consistency = clampScore(100 - 100*float64(sentinels)/n)
	report.Validity = 100
	report.Accuracy = clampScore(100 - 100*iqrOutlierRatio(totals))

	if missing > 0 {
		report.Findings = append(report.Findings, fmt.Sprintf("%d missing volume cells", missing))
	}
	if sentinels > 0 {
		report.Findings = append(report.Findings, fmt.Sprintf("%d rows with sentinel names", sentinels))
	}
	return r.finish(report)
}

func (r *Reporter) trimReport(trims []domain.TrimEntry) domain.QualityReport {
	report := domain.QualityReport{Dataset: "trims"}
	if len(trims) == 0 {
		return r.finish(report, "dataset is empty")
	}

	n := float64(len(trims))
	var missing, badYears, badPrices int
	values := make([]float64, 0, len(trims))
	for _, t := range trims {
		if t.GenmodelID == "" || t.Trim == "" {
			missing++
		}
		if t.Year < r.yearMin || t.Year > r.yearMax {
			badYears++
		}
		if t.Price <= 0 || t.Price > maxPlausiblePrice {
			badPrices++
		} else {
			values = append(values, t.Price)
		}
	}

	report.Completeness = 100 * (1 - float64(missing)/n)
	report.Uniqueness = 100
	report.Consistency = clampScore(100 - 100*float64(badYears)/n)
	report.Validity = clampScore(100 - 100*float64(badPrices)/n)
	report.Accuracy = clampScore(100 - 100*iqrOutlierRatio(values))
	return r.finish(report)
}

// finish computes the weighted overall score and its rating.
func (r *Reporter) finish(report domain.QualityReport, findings ...string) domain.QualityReport {
	report.Findings = append(report.Findings, findings...)
	report.Overall = clampScore(
		r.cfg.CompletenessWeight*report.Completeness +
			r.cfg.UniquenessWeight*report.Uniqueness +
			r.cfg.ConsistencyWeight*report.Consistency +
			r.cfg.ValidityWeight*report.Validity +
			r.cfg.AccuracyWeight*report.Accuracy)
	report.Rating = rating(report.Overall)
	return report
}

func rating(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Good"
	case score >= 70:
		return "Fair"
	case score >= 60:
		return "Poor"
	default:
		return "Critical"
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// iqrOutlierRatio is the share of values outside the 1.5 IQR fences.
func iqrOutlierRatio(values []float64) float64 {
	if len(values) < 4 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	outliers := 0
	for _, v := range values {
		if v < lower || v > upper {
			outliers++
		}
	}
	return float64(outliers) / float64(len(values))
}

func percentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
