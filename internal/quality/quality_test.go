package quality

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carmarket/internal/config"
	"carmarket/internal/dataset"
	"carmarket/pkg/contracts/domain"
)

func testReporter() *Reporter {
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewReporter(cfg.Quality, cfg.Data, logger)
}

func catalogEntry(maker, model, id string) domain.CatalogEntry {
	return domain.CatalogEntry{Key: domain.CompositeKey{Automaker: maker, Genmodel: model, GenmodelID: id}}
}

func TestCatalogReport_Clean(t *testing.T) {
	r := testReporter()
	tables := &dataset.Tables{
		Catalog: []domain.CatalogEntry{
			catalogEntry("Ford", "Fiesta", "F1"),
			catalogEntry("Ford", "Focus", "F2"),
			catalogEntry("BMW", "X5", "B1"),
		},
	}

	reports := r.Reports(context.Background(), tables)
	require.Len(t, reports, 3, "catalog, prices and sales are always scored")

	catalog := reports[0]
	assert.Equal(t, "catalog", catalog.Dataset)
	assert.Equal(t, 100.0, catalog.Completeness)
	assert.Equal(t, 100.0, catalog.Uniqueness)
	assert.Equal(t, 100.0, catalog.Consistency)
	assert.Equal(t, 100.0, catalog.Overall)
	assert.Equal(t, "Excellent", catalog.Rating)
	assert.Empty(t, catalog.Findings)
}

func TestCatalogReport_DuplicatesAndSentinels(t *testing.T) {
	r := testReporter()
	entries := []domain.CatalogEntry{
		catalogEntry("Ford", "Fiesta", "F1"),
		catalogEntry("Ford", "Fiesta", "F1"),
		catalogEntry("undefined", "X5", "B1"),
		catalogEntry("BMW", "", "B2"),
	}

	report := r.catalogReport(entries)
	assert.Less(t, report.Completeness, 100.0)
	assert.Equal(t, 75.0, report.Uniqueness)
	assert.Less(t, report.Consistency, 100.0)
	assert.Len(t, report.Findings, 3)
}

func TestPriceReport(t *testing.T) {
	r := testReporter()
	prices := []dataset.PriceRecord{
		{GenmodelID: "F1", Year: 2005, Price: 12000},
		{GenmodelID: "F1", Year: 2006, Price: 12500},
		{GenmodelID: "F2", Year: 2005, Price: 18000},
		{GenmodelID: "F2", Year: 1950, Price: -5},
	}

	report := r.priceReport(prices)
	assert.Equal(t, "prices", report.Dataset)
	assert.Equal(t, 100.0, report.Completeness)
	assert.Equal(t, 75.0, report.Consistency, "one row outside the model-year range")
	assert.Equal(t, 75.0, report.Validity, "one non-positive price")
	assert.Len(t, report.Findings, 2)
}

func TestSalesReport_MissingCells(t *testing.T) {
	r := testReporter()
	sales := &dataset.SalesTable{
		Years: []int{2001, 2002},
		Rows: []dataset.SalesRow{
			{Automaker: "Ford", Genmodel: "Fiesta", GenmodelID: "F1", Volumes: []int32{100, 150}},
			{Automaker: "Ford", Genmodel: "Focus", GenmodelID: "F2", Volumes: []int32{dataset.MissingVolume, 200}},
		},
	}

	report := r.salesReport(sales)
	assert.Equal(t, 75.0, report.Completeness, "one of four cells is missing")
	assert.Equal(t, 100.0, report.Uniqueness)
	assert.Contains(t, report.Findings[0], "missing volume cells")
}

func TestEmptyDatasetsAreCritical(t *testing.T) {
	r := testReporter()
	reports := r.Reports(context.Background(), &dataset.Tables{})

	for _, report := range reports {
		assert.Equal(t, 0.0, report.Overall, report.Dataset)
		assert.Equal(t, "Critical", report.Rating, report.Dataset)
		assert.Contains(t, report.Findings, "dataset is empty")
	}
}

func TestTrimReportIncludedWhenPresent(t *testing.T) {
	r := testReporter()
	tables := &dataset.Tables{
		Trims: []domain.TrimEntry{
			{GenmodelID: "F1", Trim: "Zetec", Year: 2010, Price: 14000, FuelType: "Petrol"},
		},
	}

	reports := r.Reports(context.Background(), tables)
	require.Len(t, reports, 4)
	assert.Equal(t, "trims", reports[3].Dataset)
	assert.Equal(t, 100.0, reports[3].Completeness)
}

func TestRating(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "Excellent"}, {90, "Excellent"},
		{85, "Good"}, {80, "Good"},
		{75, "Fair"}, {70, "Fair"},
		{65, "Poor"}, {60, "Poor"},
		{59, "Critical"}, {0, "Critical"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rating(tt.score))
	}
}

func TestIQROutlierRatio(t *testing.T) {
	values := []float64{100, 102, 98, 101, 99, 103, 97, 5000}
	assert.InDelta(t, 0.125, iqrOutlierRatio(values), 1e-9)
	assert.Equal(t, 0.0, iqrOutlierRatio([]float64{1, 2, 3}))
}
