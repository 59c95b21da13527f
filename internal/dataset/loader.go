package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"carmarket/internal/config"
	apperrors "carmarket/internal/errors"
	"carmarket/pkg/contracts/domain"
)

// Loader reads the configured source tables into raw in-memory form.
type Loader struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewLoader creates a loader for the configured data sources.
func NewLoader(cfg *config.Config, logger *slog.Logger) *Loader {
	return &Loader{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "dataset")),
	}
}

// Load reads all sources. Sources load independently: a missing or
// unreadable file yields an empty table plus a warning, never an
// abort. A parsed file missing required columns is the one hard error.
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	tables := &Tables{Sales: &SalesTable{}}

	var mu sync.Mutex
	warn := func(msg string) {
		mu.Lock()
		tables.Warnings = append(tables.Warnings, msg)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		catalog, err := l.loadCatalog(gctx, warn)
		if err != nil {
			return err
		}
		tables.Catalog = catalog
		return nil
	})

	g.Go(func() error {
		prices, err := l.loadPrices(gctx, warn)
		if err != nil {
			return err
		}
		tables.Prices = prices
		return nil
	})

	g.Go(func() error {
		sales, err := l.loadSales(gctx, warn)
		if err != nil {
			return err
		}
		tables.Sales = sales
		return nil
	})

	g.Go(func() error {
		trims, err := l.loadTrims(gctx, warn)
		if err != nil {
			return err
		}
		tables.Trims = trims
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "sources loaded",
		slog.Int("catalog_rows", len(tables.Catalog)),
		slog.Int("price_rows", len(tables.Prices)),
		slog.Int("sales_rows", len(tables.Sales.Rows)),
		slog.Int("trim_rows", len(tables.Trims)),
		slog.Int("warnings", len(tables.Warnings)))

	return tables, nil
}

func (l *Loader) loadCatalog(ctx context.Context, warn func(string)) ([]domain.CatalogEntry, error) {
	path := l.cfg.CatalogPath()
	df, encoding, err := readFrame(path)
	if err != nil {
		l.logger.WarnContext(ctx, "catalog source unavailable",
			slog.String("path", path), slog.String("error", err.Error()))
		warn(fmt.Sprintf("catalog: source unavailable: %v", err))
		return nil, nil
	}

	header := catalogSchema.canonicalize(df.Names())
	if missing := catalogSchema.missingColumns(header); len(missing) > 0 {
		return nil, apperrors.NewSchemaError(catalogSchema.name, missing)
	}

	idx := columnIndex(header)
	pool := newInternPool()
	records := dataRows(df.Records())

	entries := make([]domain.CatalogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.CatalogEntry{
			Key: domain.CompositeKey{
				Automaker:  pool.intern(strings.TrimSpace(rec[idx["Automaker"]])),
				Genmodel:   pool.intern(strings.TrimSpace(rec[idx["Genmodel"]])),
				GenmodelID: strings.TrimSpace(rec[idx["Genmodel_ID"]]),
			},
		})
	}

	l.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("rows", len(entries)), slog.String("encoding", encoding))
	return entries, nil
}

func (l *Loader) loadPrices(ctx context.Context, warn func(string)) ([]PriceRecord, error) {
	path := l.cfg.PricePath()
	df, encoding, err := readFrame(path)
	if err != nil {
		l.logger.WarnContext(ctx, "price source unavailable",
			slog.String("path", path), slog.String("error", err.Error()))
		warn(fmt.Sprintf("price: source unavailable: %v", err))
		return nil, nil
	}

	header := priceSchema.canonicalize(df.Names())
	if missing := priceSchema.missingColumns(header); len(missing) > 0 {
		return nil, apperrors.NewSchemaError(priceSchema.name, missing)
	}

	idx := columnIndex(header)
	records := dataRows(df.Records())

	var skipped int
	prices := make([]PriceRecord, 0, len(records))
	for _, rec := range records {
		year, yearErr := cast.ToIntE(strings.TrimSpace(rec[idx["Year"]]))
		price, priceErr := parseNumber(rec[idx["Entry_price"]])
		id := strings.TrimSpace(rec[idx["Genmodel_ID"]])
		if yearErr != nil || priceErr != nil || id == "" {
			skipped++
			continue
		}
		prices = append(prices, PriceRecord{GenmodelID: id, Year: year, Price: price})
	}

	if skipped > 0 {
		warn(fmt.Sprintf("price: %d rows dropped with unparseable year or price", skipped))
	}

	l.logger.InfoContext(ctx, "price table loaded",
		slog.Int("rows", len(prices)), slog.Int("skipped", skipped),
		slog.String("encoding", encoding))
	return prices, nil
}

func (l *Loader) loadSales(ctx context.Context, warn func(string)) (*SalesTable, error) {
	path := l.cfg.SalesPath()
	df, encoding, err := readFrame(path)
	if err != nil {
		l.logger.WarnContext(ctx, "sales source unavailable",
			slog.String("path", path), slog.String("error", err.Error()))
		warn(fmt.Sprintf("sales: source unavailable: %v", err))
		return &SalesTable{}, nil
	}

	header := salesSchema.canonicalize(df.Names())
	if missing := salesSchema.missingColumns(header); len(missing) > 0 {
		return nil, apperrors.NewSchemaError(salesSchema.name, missing)
	}

	// The year range descriptor decides which numeric columns count.
	// Numeric columns outside it are reported, never silently used.
	type yearCol struct {
		year int
		col  int
	}
	var yearCols []yearCol
	for i, label := range header {
		year, ok := yearColumn(label)
		if !ok {
			continue
		}
		if year < l.cfg.Data.YearMin || year > l.cfg.Data.YearMax {
			warn(fmt.Sprintf("sales: year column %d outside configured range %d-%d, ignored",
				year, l.cfg.Data.YearMin, l.cfg.Data.YearMax))
			continue
		}
		yearCols = append(yearCols, yearCol{year: year, col: i})
	}
	sort.Slice(yearCols, func(i, j int) bool { return yearCols[i].year < yearCols[j].year })

	table := &SalesTable{Years: make([]int, len(yearCols))}
	for i, yc := range yearCols {
		table.Years[i] = yc.year
	}

	idx := columnIndex(header)
	makerCol, hasMaker := idx["Automaker"]
	pool := newInternPool()
	records := dataRows(df.Records())

	var badCells int
	table.Rows = make([]SalesRow, 0, len(records))
	for _, rec := range records {
		row := SalesRow{
			Genmodel:   pool.intern(strings.TrimSpace(rec[idx["Genmodel"]])),
			GenmodelID: strings.TrimSpace(rec[idx["Genmodel_ID"]]),
			Volumes:    make([]int32, len(yearCols)),
		}
		if hasMaker {
			row.Automaker = pool.intern(strings.TrimSpace(rec[makerCol]))
		}
		for i, yc := range yearCols {
			cell := strings.TrimSpace(rec[yc.col])
			if cell == "" || strings.EqualFold(cell, "nan") {
				row.Volumes[i] = MissingVolume
				continue
			}
			v, err := parseNumber(cell)
			if err != nil || v < 0 {
				row.Volumes[i] = MissingVolume
				badCells++
				continue
			}
			row.Volumes[i] = int32(v)
		}
		table.Rows = append(table.Rows, row)
	}

	if badCells > 0 {
		warn(fmt.Sprintf("sales: %d volume cells unparseable, treated as missing", badCells))
	}

	l.logger.InfoContext(ctx, "sales table loaded",
		slog.Int("rows", len(table.Rows)), slog.Int("year_columns", len(table.Years)),
		slog.String("encoding", encoding))
	return table, nil
}

func (l *Loader) loadTrims(ctx context.Context, warn func(string)) ([]domain.TrimEntry, error) {
	path := l.cfg.TrimPath()
	if path == "" {
		return nil, nil
	}

	df, encoding, err := readFrame(path)
	if err != nil {
		l.logger.WarnContext(ctx, "trim source unavailable",
			slog.String("path", path), slog.String("error", err.Error()))
		warn(fmt.Sprintf("trim: source unavailable: %v", err))
		return nil, nil
	}

	header := trimSchema.canonicalize(df.Names())
	if missing := trimSchema.missingColumns(header); len(missing) > 0 {
		return nil, apperrors.NewSchemaError(trimSchema.name, missing)
	}

	idx := columnIndex(header)
	fuelCol, hasFuel := idx["Fuel_type"]
	pool := newInternPool()
	records := dataRows(df.Records())

	var skipped int
	trims := make([]domain.TrimEntry, 0, len(records))
	for _, rec := range records {
		year, yearErr := cast.ToIntE(strings.TrimSpace(rec[idx["Year"]]))
		price, priceErr := parseNumber(rec[idx["Price"]])
		id := strings.TrimSpace(rec[idx["Genmodel_ID"]])
		if yearErr != nil || priceErr != nil || id == "" {
			skipped++
			continue
		}
		entry := domain.TrimEntry{
			GenmodelID: id,
			Trim:       strings.TrimSpace(rec[idx["Trim"]]),
			Year:       year,
			Price:      price,
		}
		if hasFuel {
			entry.FuelType = pool.intern(strings.TrimSpace(rec[fuelCol]))
		}
		trims = append(trims, entry)
	}

	if skipped > 0 {
		warn(fmt.Sprintf("trim: %d rows dropped with unparseable year or price", skipped))
	}

	l.logger.InfoContext(ctx, "trim table loaded",
		slog.Int("rows", len(trims)), slog.Int("skipped", skipped),
		slog.String("encoding", encoding))
	return trims, nil
}

// dataRows strips the header row that df.Records always includes.
func dataRows(records [][]string) [][]string {
	if len(records) <= 1 {
		return nil
	}
	return records[1:]
}

// parseNumber coerces a cell to float64, tolerating currency symbols
// and thousands separators. NaN and infinities count as unparseable.
func parseNumber(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	cell = strings.Trim(cell, "£$€")
	cell = strings.ReplaceAll(cell, ",", "")
	v, err := cast.ToFloat64E(cell)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", cell)
	}
	return v, nil
}
