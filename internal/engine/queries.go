package engine

import (
	"context"
	"fmt"
	"sort"

	apperrors "carmarket/internal/errors"
	"carmarket/pkg/contracts/domain"
)

// Automakers lists the distinct automakers of the cleaned catalog in
// ascending order.
func (e *Engine) Automakers(ctx context.Context) ([]string, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return cached(s, "automakers", func() []string {
		seen := make(map[string]bool)
		var out []string
		for _, entry := range s.Catalog {
			if !seen[entry.Key.Automaker] {
				seen[entry.Key.Automaker] = true
				out = append(out, entry.Key.Automaker)
			}
		}
		sort.Strings(out)
		return out
	}), nil
}

// PriceSummaries returns one row per catalog entry; entries without
// price observations carry a nil summary.
func (e *Engine) PriceSummaries(ctx context.Context) ([]domain.PriceRow, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.PriceRows, nil
}

// SalesSummaries returns one zero-filled row per catalog entry.
func (e *Engine) SalesSummaries(ctx context.Context) ([]domain.SalesSummary, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.SalesSummaries, nil
}

// TrimSummaries returns one row per catalog entry; nil summaries when
// the trim table is absent.
func (e *Engine) TrimSummaries(ctx context.Context) ([]domain.TrimRow, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.TrimRows, nil
}

// MarketShare returns per-automaker sales shares, largest first.
func (e *Engine) MarketShare(ctx context.Context) ([]domain.MarketShareEntry, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return cached(s, "market_share", func() []domain.MarketShareEntry {
		return e.reconciler.MarketShare(ctx, s.SalesSummaries)
	}), nil
}

// Concentration returns the HHI and top-N structure of the market.
func (e *Engine) Concentration(ctx context.Context) (domain.MarketConcentration, error) {
	s, err := e.Snapshot()
	if err != nil {
		return domain.MarketConcentration{}, err
	}
	shares, err := e.MarketShare(ctx)
	if err != nil {
		return domain.MarketConcentration{}, err
	}
	return cached(s, "concentration", func() domain.MarketConcentration {
		return e.reconciler.Concentration(shares)
	}), nil
}

// PriceTiers returns the quantile-based tier of every catalog entry.
func (e *Engine) PriceTiers(ctx context.Context) ([]domain.TierAssignment, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Tiers, nil
}

// SalesBySegment aggregates total sales per price tier.
func (e *Engine) SalesBySegment(ctx context.Context) ([]domain.SegmentSales, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return cached(s, "segment_sales", func() []domain.SegmentSales {
		return e.engineer.SalesBySegment(ctx, s.Tiers, s.SalesSummaries)
	}), nil
}

// Elasticity returns the successive percent-change elasticity series
// over the priced catalog rows.
func (e *Engine) Elasticity(ctx context.Context) ([]domain.ElasticityPoint, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return cached(s, "elasticity", func() []domain.ElasticityPoint {
		return e.engineer.Elasticity(ctx, s.PriceRows, s.SalesSummaries)
	}), nil
}

// PerformanceTiers maps every model with sales data to its volume
// band.
func (e *Engine) PerformanceTiers(ctx context.Context) (map[domain.CompositeKey]domain.PerformanceTier, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return cached(s, "performance_tiers", func() map[domain.CompositeKey]domain.PerformanceTier {
		return e.engineer.PerformanceTiers(ctx, s.SalesSummaries)
	}), nil
}

// Outliers flags models outside the method's bounds on the default
// feature columns.
func (e *Engine) Outliers(ctx context.Context, method domain.OutlierMethod) ([]domain.OutlierSet, error) {
	if method != domain.OutlierIQR && method != domain.OutlierZScore {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown outlier method %q", method))
	}
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	type result struct {
		sets []domain.OutlierSet
		err  error
	}
	r := cached(s, "outliers:"+string(method), func() result {
		sets, err := e.analyzer.Outliers(ctx, s.features, method, nil)
		return result{sets: sets, err: err}
	})
	return r.sets, r.err
}

// Clusters returns the k-means segment of every complete-case model.
func (e *Engine) Clusters(ctx context.Context) ([]domain.ClusterAssignment, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return cached(s, "clusters", func() []domain.ClusterAssignment {
		return e.analyzer.Clusters(ctx, s.features, nil)
	}), nil
}

// Correlation returns the feature correlation matrix for the chosen
// method.
func (e *Engine) Correlation(ctx context.Context, method domain.CorrelationMethod) (domain.CorrelationMatrix, error) {
	if method != domain.CorrelationPearson && method != domain.CorrelationSpearman {
		return domain.CorrelationMatrix{}, apperrors.NewAppValidationError(fmt.Sprintf("unknown correlation method %q", method))
	}
	s, err := e.Snapshot()
	if err != nil {
		return domain.CorrelationMatrix{}, err
	}
	return cached(s, "correlation:"+string(method), func() domain.CorrelationMatrix {
		return e.analyzer.Correlation(ctx, s.features, method, nil)
	}), nil
}

// TopCorrelations ranks feature pairs by absolute Pearson magnitude.
func (e *Engine) TopCorrelations(ctx context.Context) ([]domain.CorrelationPair, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return cached(s, "top_correlations", func() []domain.CorrelationPair {
		return e.analyzer.TopCorrelations(ctx, s.features, nil)
	}), nil
}

// TTest compares total sales between two price tiers.
func (e *Engine) TTest(ctx context.Context, groupA, groupB domain.PriceTier) (domain.TTestResult, error) {
	if !validTier(groupA) || !validTier(groupB) {
		return domain.TTestResult{}, apperrors.NewAppValidationError(
			fmt.Sprintf("invalid tier pair %q, %q", groupA, groupB))
	}
	s, err := e.Snapshot()
	if err != nil {
		return domain.TTestResult{}, err
	}
	key := fmt.Sprintf("ttest:%s|%s", groupA, groupB)
	return cached(s, key, func() domain.TTestResult {
		return e.analyzer.TTest(ctx, s.Tiers, s.SalesSummaries, groupA, groupB)
	}), nil
}

// ANOVA compares total sales across all price tiers.
func (e *Engine) ANOVA(ctx context.Context) (domain.ANOVAResult, error) {
	s, err := e.Snapshot()
	if err != nil {
		return domain.ANOVAResult{}, err
	}
	return cached(s, "anova", func() domain.ANOVAResult {
		return e.analyzer.ANOVA(ctx, s.Tiers, s.SalesSummaries)
	}), nil
}

// Normality runs the normality test over one feature column.
func (e *Engine) Normality(ctx context.Context, metric string) (domain.NormalityResult, error) {
	s, err := e.Snapshot()
	if err != nil {
		return domain.NormalityResult{}, err
	}
	values, ok := s.features.Column(metric)
	if !ok {
		return domain.NormalityResult{}, apperrors.NewAppValidationError(
			fmt.Sprintf("unknown metric %q", metric))
	}
	return cached(s, "normality:"+metric, func() domain.NormalityResult {
		return e.analyzer.Normality(ctx, metric, values)
	}), nil
}

// Regression fits total sales on mean price.
func (e *Engine) Regression(ctx context.Context) (domain.RegressionResult, error) {
	s, err := e.Snapshot()
	if err != nil {
		return domain.RegressionResult{}, err
	}
	return cached(s, "regression", func() domain.RegressionResult {
		return e.analyzer.Regression(ctx, s.features)
	}), nil
}

// QualityReports returns the per-dataset quality scores of the
// snapshot.
func (e *Engine) QualityReports(ctx context.Context) ([]domain.QualityReport, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Quality, nil
}

// ValidationReport returns the catalog cleaning report.
func (e *Engine) ValidationReport(ctx context.Context) (*domain.ValidationReport, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Validation, nil
}

// Insights evaluates the recommendation rules over the snapshot.
func (e *Engine) Insights(ctx context.Context) ([]domain.Insight, error) {
	s, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	shares, err := e.MarketShare(ctx)
	if err != nil {
		return nil, err
	}
	concentration, err := e.Concentration(ctx)
	if err != nil {
		return nil, err
	}
	return cached(s, "insights", func() []domain.Insight {
		return e.reporter.Insights(ctx, s.Quality, s.Validation, concentration, shares)
	}), nil
}

func validTier(tier domain.PriceTier) bool {
	switch tier {
	case domain.TierBudget, domain.TierMidRange, domain.TierPremium, domain.TierLuxury:
		return true
	}
	return false
}
