package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carmarket/internal/config"
	apperrors "carmarket/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Data.Dir = dir
	return cfg
}

func TestLoad_AllSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Basic_table.csv",
		"Maker,Model,Model_ID\nFord,Fiesta,F_1\nBMW, 3 Series ,B_7\n")
	writeFile(t, dir, "Price_table.csv",
		"Model_ID,Year,Entry_price\nF_1,2010,\"£12,000\"\nF_1,2011,12500\nB_7,bad,30000\n")
	writeFile(t, dir, "Sales_table.csv",
		"Maker,Genmodel,Genmodel_ID,2001,2002,2003\nFord,Fiesta,F_1,100,150,200\nBMW,3 Series,B_7,,50,x\n")
	writeFile(t, dir, "Trim_table.csv",
		"Genmodel_ID,Trim,Year,Price,Fuel_type\nF_1,Zetec,2010,13000,Petrol\n")

	loader := NewLoader(testConfig(dir), testLogger())
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.Catalog, 2)
	assert.Equal(t, "Ford", tables.Catalog[0].Key.Automaker)
	assert.Equal(t, "3 Series", tables.Catalog[1].Key.Genmodel)

	// bad year row dropped, currency cell parsed
	require.Len(t, tables.Prices, 2)
	assert.Equal(t, 12000.0, tables.Prices[0].Price)
	assert.Equal(t, 2010, tables.Prices[0].Year)

	require.Len(t, tables.Sales.Rows, 2)
	assert.Equal(t, []int{2001, 2002, 2003}, tables.Sales.Years)
	assert.Equal(t, []int32{100, 150, 200}, tables.Sales.Rows[0].Volumes)
	assert.Equal(t, []int32{MissingVolume, 50, MissingVolume}, tables.Sales.Rows[1].Volumes)

	require.Len(t, tables.Trims, 1)
	assert.Equal(t, "Petrol", tables.Trims[0].FuelType)

	// dropped price row and the bad volume cell surface as warnings
	joined := strings.Join(tables.Warnings, "\n")
	assert.Contains(t, joined, "price: 1 rows dropped")
	assert.Contains(t, joined, "volume cells unparseable")
}

func TestLoad_MissingSourcesAreNonFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Basic_table.csv",
		"Automaker,Genmodel,Genmodel_ID\nFord,Fiesta,F_1\n")

	loader := NewLoader(testConfig(dir), testLogger())
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, tables.Catalog, 1)
	assert.Empty(t, tables.Prices)
	assert.Empty(t, tables.Sales.Rows)
	assert.Empty(t, tables.Trims)

	joined := strings.Join(tables.Warnings, "\n")
	assert.Contains(t, joined, "price: source unavailable")
	assert.Contains(t, joined, "sales: source unavailable")
	assert.Contains(t, joined, "trim: source unavailable")
}

func TestLoad_SchemaViolationIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Basic_table.csv", "Maker,Color\nFord,Blue\n")

	loader := NewLoader(testConfig(dir), testLogger())
	_, err := loader.Load(context.Background())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeSchema, appErr.Type)
	assert.Equal(t, "catalog", appErr.Context["table"])
	assert.Contains(t, appErr.Context["missing_columns"], "Genmodel")
}

func TestLoad_YearColumnsOutsideDescriptorIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Basic_table.csv",
		"Automaker,Genmodel,Genmodel_ID\nFord,Fiesta,F_1\n")
	writeFile(t, dir, "Sales_table.csv",
		"Genmodel_ID,Genmodel,1999,2001,2025\nF_1,Fiesta,10,100,5\n")

	loader := NewLoader(testConfig(dir), testLogger())
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2001}, tables.Sales.Years)
	require.Len(t, tables.Sales.Rows, 1)
	assert.Equal(t, []int32{100}, tables.Sales.Rows[0].Volumes)

	joined := strings.Join(tables.Warnings, "\n")
	assert.Contains(t, joined, "year column 1999 outside configured range")
	assert.Contains(t, joined, "year column 2025 outside configured range")
}

func TestLoad_XLSXCatalog(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"Maker", "Model", "Model_ID"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"Ford", "Fiesta", "F_1"}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "Basic_table.xlsx")))

	cfg := testConfig(dir)
	cfg.Data.CatalogFile = "Basic_table.xlsx"

	loader := NewLoader(cfg, testLogger())
	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.Catalog, 1)
	assert.Equal(t, "Ford", tables.Catalog[0].Key.Automaker)
	assert.Equal(t, "F_1", tables.Catalog[0].Key.GenmodelID)
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		expected string
		encoding string
	}{
		{
			name:     "plain utf-8",
			raw:      []byte("Citroën"),
			expected: "Citroën",
			encoding: "utf-8",
		},
		{
			name:     "utf-8 with BOM",
			raw:      append([]byte{0xEF, 0xBB, 0xBF}, []byte("Ford")...),
			expected: "Ford",
			encoding: "utf-8",
		},
		{
			name:     "windows-1252",
			raw:      []byte{'C', 'i', 't', 'r', 'o', 0xEB, 'n'},
			expected: "Citroën",
			encoding: "windows-1252",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, encoding, err := decodeText(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
			assert.Equal(t, tt.encoding, encoding)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		cell     string
		expected float64
		wantErr  bool
	}{
		{"12000", 12000, false},
		{"£12,000", 12000, false},
		{"$1,234.5", 1234.5, false},
		{" 99 ", 99, false},
		{"NaN", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			v, err := parseNumber(tt.cell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestInternPool(t *testing.T) {
	pool := newInternPool()
	a := pool.intern("Ford")
	b := pool.intern("Ford")
	assert.Equal(t, a, b)
	assert.Len(t, pool, 1)
}
