package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2001, cfg.Data.YearMin)
	assert.Equal(t, 2020, cfg.Data.YearMax)
	assert.Equal(t, 5, cfg.Analytics.ClusterCount)
	assert.Equal(t, int64(42), cfg.Analytics.ClusterSeed)
	assert.Equal(t, 0.05, cfg.Analytics.Alpha)

	require.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "inverted year range",
			mutate:  func(c *Config) { c.Data.YearMin = 2021 },
			wantErr: "year_min",
		},
		{
			name:    "zero clusters",
			mutate:  func(c *Config) { c.Analytics.ClusterCount = 0 },
			wantErr: "cluster count",
		},
		{
			name:    "alpha out of range",
			mutate:  func(c *Config) { c.Analytics.Alpha = 1.5 },
			wantErr: "alpha",
		},
		{
			name:    "quality weights drift",
			mutate:  func(c *Config) { c.Quality.AccuracyWeight = 0.5 },
			wantErr: "quality weights",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NormalizesLoggingFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestDataPaths(t *testing.T) {
	cfg := Default()
	cfg.Data.Dir = filepath.Join("srv", "data")

	assert.Equal(t, filepath.Join("srv", "data", "Basic_table.csv"), cfg.CatalogPath())
	assert.Equal(t, filepath.Join("srv", "data", "Price_table.csv"), cfg.PricePath())
	assert.Equal(t, filepath.Join("srv", "data", "Sales_table.csv"), cfg.SalesPath())
	assert.Equal(t, filepath.Join("srv", "data", "Trim_table.csv"), cfg.TrimPath())
}

func TestTrimPath_Unconfigured(t *testing.T) {
	cfg := Default()
	cfg.Data.TrimFile = ""

	assert.Empty(t, cfg.TrimPath())
}

func TestDataPaths_Absolute(t *testing.T) {
	cfg := Default()
	abs := filepath.Join(string(filepath.Separator), "var", "tables", "prices.csv")
	cfg.Data.PriceFile = abs

	assert.Equal(t, abs, cfg.PricePath())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CARMARKET_SERVER_PORT", "9091")
	t.Setenv("CARMARKET_DATA_YEAR_MAX", "2019")

	// Run from a directory without a config file so env wins cleanly
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, 2019, cfg.Data.YearMax)
	assert.Equal(t, 2001, cfg.Data.YearMin)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
data:
  dir: /srv/tables
  catalog_file: catalog.csv
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/tables", cfg.Data.Dir)
	assert.Equal(t, filepath.Join("/srv/tables", "catalog.csv"), cfg.CatalogPath())
	// Defaults still apply where the file is silent
	assert.Equal(t, 8080, cfg.Server.Port)
}
