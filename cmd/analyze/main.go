// Command analyze runs the full ingest-clean-reconcile pipeline once
// and writes the main result tables as CSV files.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"carmarket/internal/config"
	"carmarket/internal/engine"
	"carmarket/internal/exporter"
	"carmarket/internal/infrastructure"
)

func main() {
	dataDir := flag.String("data", "", "data directory (defaults to the configured one)")
	outDir := flag.String("out", "results", "output directory for csv files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	if err := run(ctx, cfg, logger, *outDir); err != nil {
		logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, outDir string) error {
	eng := engine.New(cfg, logger)
	if err := eng.Load(ctx); err != nil {
		return err
	}

	prices, err := eng.PriceSummaries(ctx)
	if err != nil {
		return err
	}
	sales, err := eng.SalesSummaries(ctx)
	if err != nil {
		return err
	}
	shares, err := eng.MarketShare(ctx)
	if err != nil {
		return err
	}
	clusters, err := eng.Clusters(ctx)
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(outDir, logger)
	if err := writer.WritePriceSummaries("price_summaries.csv", prices); err != nil {
		return err
	}
	if err := writer.WriteSalesSummaries("sales_summaries.csv", sales); err != nil {
		return err
	}
	if err := writer.WriteMarketShare("market_share.csv", shares); err != nil {
		return err
	}
	if err := writer.WriteClusters("clusters.csv", clusters); err != nil {
		return err
	}

	logSummary(ctx, logger, eng)
	return nil
}

// logSummary prints the headline diagnostics of the run.
func logSummary(ctx context.Context, logger *slog.Logger, eng *engine.Engine) {
	if validation, err := eng.ValidationReport(ctx); err == nil && validation != nil {
		logger.InfoContext(ctx, "catalog validation",
			slog.Int("records", validation.TotalRecords),
			slog.Float64("quality_score", validation.QualityScore),
			slog.String("status", validation.QualityStatus))
	}
	if concentration, err := eng.Concentration(ctx); err == nil {
		logger.InfoContext(ctx, "market concentration",
			slog.Float64("hhi", concentration.HHI),
			slog.Float64("top3_percent", concentration.Top3Percent))
	}
	if regression, err := eng.Regression(ctx); err == nil && !regression.InsufficientData {
		logger.InfoContext(ctx, "price-sales regression",
			slog.Float64("slope", regression.Slope),
			slog.Float64("r_squared", regression.RSquared))
	}
	if insights, err := eng.Insights(ctx); err == nil {
		for _, insight := range insights {
			logger.InfoContext(ctx, "insight",
				slog.String("severity", string(insight.Severity)),
				slog.String("category", insight.Category),
				slog.String("message", insight.Message))
		}
	}
}
