package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"carmarket/internal/analytics"
	"carmarket/internal/cleaner"
	"carmarket/internal/config"
	"carmarket/internal/dataset"
	apperrors "carmarket/internal/errors"
	"carmarket/internal/features"
	"carmarket/internal/quality"
	"carmarket/internal/reconcile"
)

// Engine owns the current snapshot and answers all query operations
// against it. It is constructed once and shared; there is no package
// level state.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger

	loader     *dataset.Loader
	cleaner    *cleaner.Cleaner
	reconciler *reconcile.Reconciler
	engineer   *features.Engineer
	analyzer   *analytics.Analyzer
	reporter   *quality.Reporter

	version atomic.Uint64
	current atomic.Pointer[Snapshot]
}

// New wires the pipeline stages together. Call Load before serving
// queries.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "engine")),
		loader:     dataset.NewLoader(cfg, logger),
		cleaner:    cleaner.NewCleaner(logger),
		reconciler: reconcile.NewReconciler(logger),
		engineer:   features.NewEngineer(logger),
		analyzer:   analytics.NewAnalyzer(cfg.Analytics, logger),
		reporter:   quality.NewReporter(cfg.Quality, cfg.Data, logger),
	}
}

// Load builds the initial snapshot. Only a schema violation on a
// required column is fatal; missing sources degrade to empty tables.
func (e *Engine) Load(ctx context.Context) error {
	snapshot, err := e.build(ctx)
	if err != nil {
		return err
	}
	e.current.Store(snapshot)
	return nil
}

// Reload builds a fresh snapshot and swaps it in atomically.
// In-flight queries finish against the snapshot they started with.
func (e *Engine) Reload(ctx context.Context) (SnapshotInfo, error) {
	snapshot, err := e.build(ctx)
	if err != nil {
		return SnapshotInfo{}, err
	}
	e.current.Store(snapshot)
	e.logger.InfoContext(ctx, "snapshot swapped",
		slog.String("snapshot_id", snapshot.ID),
		slog.Uint64("version", snapshot.Version))
	return snapshot.Info(), nil
}

func (e *Engine) build(ctx context.Context) (*Snapshot, error) {
	started := time.Now()

	tables, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	cleaned, validation := e.cleaner.Clean(ctx, tables.Catalog)

	priceObs := e.reconciler.PriceObservations(ctx, cleaned, tables.Prices)
	salesObs := e.reconciler.SalesObservations(ctx, cleaned, tables.Sales)

	snapshot := &Snapshot{
		ID:             uuid.NewString(),
		Version:        e.version.Add(1),
		LoadedAt:       time.Now().UTC(),
		Catalog:        cleaned,
		PriceRows:      e.reconciler.PriceSummaries(ctx, cleaned, priceObs),
		SalesSummaries: e.reconciler.SalesSummaries(ctx, cleaned, salesObs),
		TrimRows:       e.reconciler.TrimSummaries(ctx, cleaned, tables.Trims),
		Validation:     validation,
		Quality:        e.reporter.Reports(ctx, tables),
		Warnings:       tables.Warnings,
	}
	snapshot.Tiers = e.engineer.PriceTiers(ctx, snapshot.PriceRows)
	snapshot.features = analytics.BuildFeatureTable(snapshot.PriceRows, snapshot.SalesSummaries)

	e.logger.InfoContext(ctx, "snapshot built",
		slog.String("snapshot_id", snapshot.ID),
		slog.Uint64("version", snapshot.Version),
		slog.Int("catalog", len(cleaned)),
		slog.Duration("elapsed", time.Since(started)))
	return snapshot, nil
}

// Snapshot returns the current snapshot, or a not-found error before
// the first successful Load.
func (e *Engine) Snapshot() (*Snapshot, error) {
	s := e.current.Load()
	if s == nil {
		return nil, apperrors.NewNotFoundError("dataset snapshot")
	}
	return s, nil
}
