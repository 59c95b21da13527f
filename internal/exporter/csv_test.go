package exporter

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carmarket/pkg/contracts/domain"
)

func testWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewCSVWriter(dir, logger), dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	return records
}

func key(maker, model, id string) domain.CompositeKey {
	return domain.CompositeKey{Automaker: maker, Genmodel: model, GenmodelID: id}
}

func TestWriteCSV_BOMAndContent(t *testing.T) {
	w, dir := testWriter(t)

	err := w.WriteCSV("out.csv", WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "2"}, {"3", "4"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))

	records := readCSV(t, filepath.Join(dir, "out.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"a", "b"}, records[0])
}

func TestWritePriceSummaries(t *testing.T) {
	w, dir := testWriter(t)
	vol := 0.0909
	rows := []domain.PriceRow{
		{Key: key("Ford", "Fiesta", "F_1"), Summary: &domain.PriceSummary{
			Key: key("Ford", "Fiesta", "F_1"),
			Min: 10000, Max: 12000, Mean: 11000, Median: 11000,
			StdDev: 1000, Volatility: &vol, Count: 3,
		}},
		{Key: key("BMW", "X5", "B_1")},
	}

	require.NoError(t, w.WritePriceSummaries("prices.csv", rows))

	records := readCSV(t, filepath.Join(dir, "prices.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, "Mean_price", records[0][5])
	assert.Equal(t, "11000", records[1][5])
	assert.Equal(t, "0.0909", records[1][8])
	assert.Equal(t, "", records[2][5], "unpriced model has empty summary cells")
}

func TestWriteSalesSummaries(t *testing.T) {
	w, dir := testWriter(t)
	summaries := []domain.SalesSummary{
		{Key: key("Ford", "Fiesta", "F_1"), Total: 450, Mean: 150, Min: 100, Max: 200, Trend: 50, YearsWithData: 3},
	}

	require.NoError(t, w.WriteSalesSummaries("sales.csv", summaries))

	records := readCSV(t, filepath.Join(dir, "sales.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, "450", records[1][3])
	assert.Equal(t, "3", records[1][9])
}

func TestWriteMarketShareAndClusters(t *testing.T) {
	w, dir := testWriter(t)

	require.NoError(t, w.WriteMarketShare("share.csv", []domain.MarketShareEntry{
		{Automaker: "Ford", TotalSales: 450, SharePercent: 76.27},
	}))
	require.NoError(t, w.WriteClusters("clusters.csv", []domain.ClusterAssignment{
		{Key: key("Ford", "Fiesta", "F_1"), Cluster: 2, Label: "Premium Segment"},
	}))

	share := readCSV(t, filepath.Join(dir, "share.csv"))
	assert.Equal(t, "76.27", share[1][2])

	clusters := readCSV(t, filepath.Join(dir, "clusters.csv"))
	assert.Equal(t, "Premium Segment", clusters[1][4])
}

func TestWriteCSV_CreatesNestedDirectories(t *testing.T) {
	w, dir := testWriter(t)

	require.NoError(t, w.WriteCSV(filepath.Join("nested", "out.csv"), WriteOptions{
		Headers: []string{"a"},
	}))
	_, err := os.Stat(filepath.Join(dir, "nested", "out.csv"))
	assert.NoError(t, err)
}
