// Package config provides centralized configuration management for the
// car market analytics service. It handles loading configuration from
// multiple sources, validation, and provides a type-safe API for
// accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CARMARKET_* for namespacing:
//
//	CARMARKET_SERVER_PORT=8080
//	CARMARKET_DATA_DIR=/srv/carmarket/data
//	CARMARKET_LOGGING_LEVEL=info
//	CARMARKET_ANALYTICS_CLUSTER_COUNT=5
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For testing, use config.Default() to create a configuration with
// sensible defaults that don't require environment variables or
// external resources.
package config
