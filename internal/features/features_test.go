package features

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carmarket/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func key(id string) domain.CompositeKey {
	return domain.CompositeKey{Automaker: "Maker", Genmodel: "Model " + id, GenmodelID: id}
}

func priceRow(id string, mean float64) domain.PriceRow {
	k := key(id)
	return domain.PriceRow{Key: k, Summary: &domain.PriceSummary{Key: k, Mean: mean, Count: 1}}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.75, quantile(sorted, 0.25))
	assert.Equal(t, 2.5, quantile(sorted, 0.5))
	assert.Equal(t, 3.25, quantile(sorted, 0.75))
	assert.Equal(t, 4.0, quantile(sorted, 1))
	assert.Equal(t, 1.0, quantile(sorted, 0))
	assert.Equal(t, 5.0, quantile([]float64{5}, 0.95))
	assert.True(t, len(sorted) > 0)
}

func TestPriceTiers_Partition(t *testing.T) {
	e := NewEngineer(testLogger())

	rows := []domain.PriceRow{
		priceRow("1", 5000),
		priceRow("2", 10000),
		priceRow("3", 20000),
		priceRow("4", 40000),
		priceRow("5", 80000),
		priceRow("6", 200000),
		{Key: key("7")}, // no price data
	}

	assignments := e.PriceTiers(context.Background(), rows)
	require.Len(t, assignments, len(rows), "every catalog entry gets exactly one label")

	counts := make(map[domain.PriceTier]int)
	for _, a := range assignments {
		counts[a.Tier]++
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, len(rows), total)
	assert.Equal(t, 1, counts[domain.TierUnknown])
	assert.NotZero(t, counts[domain.TierBudget])
	assert.NotZero(t, counts[domain.TierLuxury])
}

func TestPriceTiers_Boundaries(t *testing.T) {
	e := NewEngineer(testLogger())

	// means 10,20,30,40,50: p25=20, p75=40, p95=48
	rows := []domain.PriceRow{
		priceRow("1", 10),
		priceRow("2", 20),
		priceRow("3", 30),
		priceRow("4", 40),
		priceRow("5", 50),
	}

	assignments := e.PriceTiers(context.Background(), rows)
	byID := make(map[string]domain.PriceTier)
	for _, a := range assignments {
		byID[a.Key.GenmodelID] = a.Tier
	}

	assert.Equal(t, domain.TierBudget, byID["1"])
	assert.Equal(t, domain.TierBudget, byID["2"], "p25 boundary is inclusive")
	assert.Equal(t, domain.TierMidRange, byID["3"])
	assert.Equal(t, domain.TierMidRange, byID["4"], "p75 boundary is inclusive")
	assert.Equal(t, domain.TierLuxury, byID["5"], "above p95")
}

func TestPriceTiers_AllUnknownWithoutPrices(t *testing.T) {
	e := NewEngineer(testLogger())
	rows := []domain.PriceRow{{Key: key("1")}, {Key: key("2")}}

	for _, a := range e.PriceTiers(context.Background(), rows) {
		assert.Equal(t, domain.TierUnknown, a.Tier)
	}
}

func TestSalesBySegment(t *testing.T) {
	e := NewEngineer(testLogger())

	tiers := []domain.TierAssignment{
		{Key: key("1"), Tier: domain.TierBudget},
		{Key: key("2"), Tier: domain.TierBudget},
		{Key: key("3"), Tier: domain.TierLuxury},
		{Key: key("4"), Tier: domain.TierUnknown},
	}
	sales := []domain.SalesSummary{
		{Key: key("1"), Total: 100},
		{Key: key("2"), Total: 50},
		{Key: key("3"), Total: 10},
		{Key: key("4"), Total: 9999},
	}

	segments := e.SalesBySegment(context.Background(), tiers, sales)
	require.Len(t, segments, 4)

	byTier := make(map[domain.PriceTier]domain.SegmentSales)
	for _, s := range segments {
		byTier[s.Tier] = s
	}

	assert.Equal(t, 150.0, byTier[domain.TierBudget].TotalSales)
	assert.Equal(t, 2, byTier[domain.TierBudget].Models)
	assert.Equal(t, 10.0, byTier[domain.TierLuxury].TotalSales)
	assert.Zero(t, byTier[domain.TierMidRange].TotalSales)

	// Unknown never appears
	_, hasUnknown := byTier[domain.TierUnknown]
	assert.False(t, hasUnknown)
}

func TestElasticity(t *testing.T) {
	e := NewEngineer(testLogger())

	prices := []domain.PriceRow{
		priceRow("1", 100),
		priceRow("2", 110), // +10% price
		priceRow("3", 110), // 0% price change: undefined
	}
	sales := []domain.SalesSummary{
		{Key: key("1"), Total: 1000},
		{Key: key("2"), Total: 900}, // -10% sales
		{Key: key("3"), Total: 950},
	}

	points := e.Elasticity(context.Background(), prices, sales)
	require.Len(t, points, 3)

	assert.Nil(t, points[0].Elasticity, "first row has no predecessor")

	require.NotNil(t, points[1].Elasticity)
	assert.InDelta(t, 1.0, *points[1].Elasticity, 1e-9, "-(-0.10)/(+0.10)")

	assert.Nil(t, points[2].Elasticity, "zero price change is undefined")
}

func TestElasticity_SkipsUnpricedRows(t *testing.T) {
	e := NewEngineer(testLogger())

	prices := []domain.PriceRow{
		priceRow("1", 100),
		{Key: key("2")}, // unpriced, excluded from the merge
		priceRow("3", 200),
	}
	sales := []domain.SalesSummary{
		{Key: key("1"), Total: 100},
		{Key: key("3"), Total: 50},
	}

	points := e.Elasticity(context.Background(), prices, sales)
	require.Len(t, points, 2)
	assert.Equal(t, "3", points[1].Key.GenmodelID)
	require.NotNil(t, points[1].Elasticity)
	assert.InDelta(t, 0.5, *points[1].Elasticity, 1e-9)
}

func TestPerformanceTierFor(t *testing.T) {
	tests := []struct {
		name     string
		summary  domain.SalesSummary
		expected domain.PerformanceTier
	}{
		{"no data", domain.SalesSummary{}, domain.PerformanceUnknown},
		{"low", domain.SalesSummary{Total: 9_999, YearsWithData: 1}, domain.PerformanceLow},
		{"medium lower bound", domain.SalesSummary{Total: 10_000, YearsWithData: 1}, domain.PerformanceMedium},
		{"medium", domain.SalesSummary{Total: 49_999, YearsWithData: 2}, domain.PerformanceMedium},
		{"high", domain.SalesSummary{Total: 99_999, YearsWithData: 3}, domain.PerformanceHigh},
		{"excellent", domain.SalesSummary{Total: 100_000, YearsWithData: 4}, domain.PerformanceExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PerformanceTierFor(tt.summary))
		})
	}
}
