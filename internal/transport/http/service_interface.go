package http

import (
	"context"

	"carmarket/internal/engine"
	"carmarket/pkg/contracts/domain"
)

// MarketService is the engine surface the handlers depend on. The
// concrete implementation is *engine.Engine; tests may substitute a
// stub.
type MarketService interface {
	Reload(ctx context.Context) (engine.SnapshotInfo, error)
	Snapshot() (*engine.Snapshot, error)

	Automakers(ctx context.Context) ([]string, error)
	PriceSummaries(ctx context.Context) ([]domain.PriceRow, error)
	SalesSummaries(ctx context.Context) ([]domain.SalesSummary, error)
	TrimSummaries(ctx context.Context) ([]domain.TrimRow, error)
	MarketShare(ctx context.Context) ([]domain.MarketShareEntry, error)
	Concentration(ctx context.Context) (domain.MarketConcentration, error)
	PriceTiers(ctx context.Context) ([]domain.TierAssignment, error)
	SalesBySegment(ctx context.Context) ([]domain.SegmentSales, error)
	Elasticity(ctx context.Context) ([]domain.ElasticityPoint, error)
	Outliers(ctx context.Context, method domain.OutlierMethod) ([]domain.OutlierSet, error)
	Clusters(ctx context.Context) ([]domain.ClusterAssignment, error)
	Correlation(ctx context.Context, method domain.CorrelationMethod) (domain.CorrelationMatrix, error)
	TopCorrelations(ctx context.Context) ([]domain.CorrelationPair, error)
	TTest(ctx context.Context, groupA, groupB domain.PriceTier) (domain.TTestResult, error)
	ANOVA(ctx context.Context) (domain.ANOVAResult, error)
	Normality(ctx context.Context, metric string) (domain.NormalityResult, error)
	Regression(ctx context.Context) (domain.RegressionResult, error)
	QualityReports(ctx context.Context) ([]domain.QualityReport, error)
	ValidationReport(ctx context.Context) (*domain.ValidationReport, error)
	Insights(ctx context.Context) ([]domain.Insight, error)
}
