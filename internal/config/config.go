package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Quality   QualityConfig   `yaml:"quality" envconfig:"QUALITY"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	ReloadTimeout   time.Duration `yaml:"reload_timeout" envconfig:"RELOAD_TIMEOUT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
	Output string `yaml:"output" envconfig:"OUTPUT"`
}

// DataConfig describes where the source tables live and which years
// the loader accepts.
type DataConfig struct {
	Dir         string `yaml:"dir" envconfig:"DIR"`
	CatalogFile string `yaml:"catalog_file" envconfig:"CATALOG_FILE"`
	PriceFile   string `yaml:"price_file" envconfig:"PRICE_FILE"`
	SalesFile   string `yaml:"sales_file" envconfig:"SALES_FILE"`
	TrimFile    string `yaml:"trim_file" envconfig:"TRIM_FILE"`
	YearMin     int    `yaml:"year_min" envconfig:"YEAR_MIN"`
	YearMax     int    `yaml:"year_max" envconfig:"YEAR_MAX"`
}

// AnalyticsConfig carries the tuning knobs of the statistical analyses.
type AnalyticsConfig struct {
	IQRMultiplier    float64 `yaml:"iqr_multiplier" envconfig:"IQR_MULTIPLIER"`
	ZScoreThreshold  float64 `yaml:"zscore_threshold" envconfig:"ZSCORE_THRESHOLD"`
	ClusterCount     int     `yaml:"cluster_count" envconfig:"CLUSTER_COUNT"`
	ClusterSeed      int64   `yaml:"cluster_seed" envconfig:"CLUSTER_SEED"`
	ClusterMaxIter   int     `yaml:"cluster_max_iter" envconfig:"CLUSTER_MAX_ITER"`
	CorrelationPairs int     `yaml:"correlation_pairs" envconfig:"CORRELATION_PAIRS"`
	NormalityCap     int     `yaml:"normality_cap" envconfig:"NORMALITY_CAP"`
	NormalityMin     int     `yaml:"normality_min" envconfig:"NORMALITY_MIN"`
	RegressionMin    int     `yaml:"regression_min" envconfig:"REGRESSION_MIN"`
	Alpha            float64 `yaml:"alpha" envconfig:"ALPHA"`
	Workers          int     `yaml:"workers" envconfig:"WORKERS"`
}

// QualityConfig holds the weights of the overall quality score. The
// weights must sum to 1.
type QualityConfig struct {
	CompletenessWeight float64 `yaml:"completeness_weight" envconfig:"COMPLETENESS_WEIGHT"`
	UniquenessWeight   float64 `yaml:"uniqueness_weight" envconfig:"UNIQUENESS_WEIGHT"`
	ConsistencyWeight  float64 `yaml:"consistency_weight" envconfig:"CONSISTENCY_WEIGHT"`
	ValidityWeight     float64 `yaml:"validity_weight" envconfig:"VALIDITY_WEIGHT"`
	AccuracyWeight     float64 `yaml:"accuracy_weight" envconfig:"ACCURACY_WEIGHT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// Load loads configuration from defaults, an optional YAML file, and
// environment variables, in that order of increasing precedence.
func Load() (*Config, error) {
	cfg := *Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := overlayFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Env vars without a value set are skipped, so file and default
	// values survive. Environment always wins when present.
	if err := envconfig.Process("CARMARKET", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// overlayFromFile unmarshals a YAML file on top of cfg; keys absent
// from the file keep their current values.
func overlayFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// CatalogPath returns the resolved path of the catalog table.
func (c *Config) CatalogPath() string { return c.dataPath(c.Data.CatalogFile) }

// PricePath returns the resolved path of the price table.
func (c *Config) PricePath() string { return c.dataPath(c.Data.PriceFile) }

// SalesPath returns the resolved path of the sales table.
func (c *Config) SalesPath() string { return c.dataPath(c.Data.SalesFile) }

// TrimPath returns the resolved path of the trim table, or "" when no
// trim file is configured.
func (c *Config) TrimPath() string {
	if c.Data.TrimFile == "" {
		return ""
	}
	return c.dataPath(c.Data.TrimFile)
}

func (c *Config) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Data.YearMin > c.Data.YearMax {
		return fmt.Errorf("year_min %d exceeds year_max %d", c.Data.YearMin, c.Data.YearMax)
	}

	if c.Analytics.ClusterCount <= 0 {
		return fmt.Errorf("cluster count must be positive")
	}

	if c.Analytics.Alpha <= 0 || c.Analytics.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %g", c.Analytics.Alpha)
	}

	sum := c.Quality.CompletenessWeight + c.Quality.UniquenessWeight +
		c.Quality.ConsistencyWeight + c.Quality.ValidityWeight + c.Quality.AccuracyWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("quality weights must sum to 1, got %g", sum)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			ReloadTimeout:   5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Data: DataConfig{
			Dir:         "data",
			CatalogFile: "Basic_table.csv",
			PriceFile:   "Price_table.csv",
			SalesFile:   "Sales_table.csv",
			TrimFile:    "Trim_table.csv",
			YearMin:     2001,
			YearMax:     2020,
		},
		Analytics: AnalyticsConfig{
			IQRMultiplier:    1.5,
			ZScoreThreshold:  3.0,
			ClusterCount:     5,
			ClusterSeed:      42,
			ClusterMaxIter:   100,
			CorrelationPairs: 10,
			NormalityCap:     5000,
			NormalityMin:     3,
			RegressionMin:    10,
			Alpha:            0.05,
			Workers:          4,
		},
		Quality: QualityConfig{
			CompletenessWeight: 0.25,
			UniquenessWeight:   0.20,
			ConsistencyWeight:  0.20,
			ValidityWeight:     0.20,
			AccuracyWeight:     0.15,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     100,
			Burst:   50,
		},
	}
}
