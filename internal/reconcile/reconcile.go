package reconcile

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"carmarket/internal/dataset"
	"carmarket/pkg/contracts/domain"
)

// Reconciler joins the raw sources through the composite key and
// aggregates them into per-model summaries.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{logger: logger.With(slog.String("component", "reconcile"))}
}

// keyIndex resolves Genmodel_ID references from sources that do not
// carry the full composite key.
type keyIndex map[string][]domain.CompositeKey

func buildKeyIndex(catalog []domain.CatalogEntry) keyIndex {
	idx := make(keyIndex, len(catalog))
	for _, entry := range catalog {
		id := entry.Key.GenmodelID
		idx[id] = append(idx[id], entry.Key)
	}
	return idx
}

// resolve maps a Genmodel_ID (plus optional name hints) to a catalog
// key. With several candidates sharing an ID, name hints disambiguate;
// otherwise the first catalog occurrence wins, deterministically.
func (idx keyIndex) resolve(id, automaker, genmodel string) (domain.CompositeKey, bool) {
	candidates := idx[strings.TrimSpace(id)]
	if len(candidates) == 0 {
		return domain.CompositeKey{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	a := domain.NormalizeName(automaker)
	g := domain.NormalizeName(genmodel)
	for _, key := range candidates {
		if (a == "" || strings.EqualFold(key.Automaker, a)) &&
			(g == "" || strings.EqualFold(key.Genmodel, g)) {
			return key, true
		}
	}
	return candidates[0], true
}

// PriceObservations resolves raw price records against the catalog.
// Records referencing unknown models are dropped.
func (r *Reconciler) PriceObservations(ctx context.Context, catalog []domain.CatalogEntry, records []dataset.PriceRecord) []domain.PriceObservation {
	idx := buildKeyIndex(catalog)

	var unresolved int
	obs := make([]domain.PriceObservation, 0, len(records))
	for _, rec := range records {
		key, ok := idx.resolve(rec.GenmodelID, "", "")
		if !ok {
			unresolved++
			continue
		}
		obs = append(obs, domain.PriceObservation{Key: key, Year: rec.Year, Price: rec.Price})
	}

	if unresolved > 0 {
		r.logger.WarnContext(ctx, "price records reference unknown models",
			slog.Int("unresolved", unresolved))
	}
	return obs
}

// SalesObservations reshapes the wide sales table into one observation
// per (model, year), resolving keys against the catalog. Missing cells
// produce no observation.
func (r *Reconciler) SalesObservations(ctx context.Context, catalog []domain.CatalogEntry, table *dataset.SalesTable) []domain.SalesObservation {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}

	idx := buildKeyIndex(catalog)

	var unresolved int
	obs := make([]domain.SalesObservation, 0, len(table.Rows)*len(table.Years))
	for _, row := range table.Rows {
		key, ok := idx.resolve(row.GenmodelID, row.Automaker, row.Genmodel)
		if !ok {
			unresolved++
			continue
		}
		for i, year := range table.Years {
			volume := row.Volumes[i]
			if volume == dataset.MissingVolume {
				continue
			}
			obs = append(obs, domain.SalesObservation{Key: key, Year: year, Volume: volume})
		}
	}

	if unresolved > 0 {
		r.logger.WarnContext(ctx, "sales rows reference unknown models",
			slog.Int("unresolved", unresolved))
	}
	return obs
}

// PriceSummaries aggregates price observations per model and left-joins
// them onto the catalog. Every catalog entry appears exactly once;
// entries without observations carry a nil summary.
func (r *Reconciler) PriceSummaries(ctx context.Context, catalog []domain.CatalogEntry, obs []domain.PriceObservation) []domain.PriceRow {
	grouped := make(map[domain.CompositeKey][]float64)
	for _, o := range obs {
		grouped[o.Key] = append(grouped[o.Key], o.Price)
	}

	rows := make([]domain.PriceRow, 0, len(catalog))
	for _, entry := range catalog {
		row := domain.PriceRow{Key: entry.Key}
		if prices, ok := grouped[entry.Key]; ok {
			row.Summary = summarizePrices(entry.Key, prices)
		}
		rows = append(rows, row)
	}

	r.logger.InfoContext(ctx, "price summaries built",
		slog.Int("catalog_rows", len(catalog)),
		slog.Int("models_with_prices", len(grouped)))
	return rows
}

func summarizePrices(key domain.CompositeKey, prices []float64) *domain.PriceSummary {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	var stddev float64
	if len(sorted) > 1 {
		stddev = stat.StdDev(sorted, nil)
	}

	summary := &domain.PriceSummary{
		Key:    key,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: median(sorted),
		StdDev: stddev,
		Count:  len(sorted),
	}
	if mean != 0 {
		v := stddev / mean
		summary.Volatility = &v
	}
	return summary
}

// median expects sorted input and interpolates even-length samples.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SalesSummaries aggregates sales observations per model and left-joins
// them onto the catalog. Entries without observations get a zero-valued
// summary: absent sales rows mean zero volume, not missing data.
func (r *Reconciler) SalesSummaries(ctx context.Context, catalog []domain.CatalogEntry, obs []domain.SalesObservation) []domain.SalesSummary {
	type group struct {
		years   []float64
		volumes []float64
	}
	grouped := make(map[domain.CompositeKey]*group)
	for _, o := range obs {
		g, ok := grouped[o.Key]
		if !ok {
			g = &group{}
			grouped[o.Key] = g
		}
		g.years = append(g.years, float64(o.Year))
		g.volumes = append(g.volumes, float64(o.Volume))
	}

	summaries := make([]domain.SalesSummary, 0, len(catalog))
	for _, entry := range catalog {
		summary := domain.SalesSummary{Key: entry.Key}
		if g, ok := grouped[entry.Key]; ok {
			summary.Total = floatsSum(g.volumes)
			summary.Mean = stat.Mean(g.volumes, nil)
			summary.Min, summary.Max = floatsBounds(g.volumes)
			if len(g.volumes) > 1 {
				summary.StdDev = stat.StdDev(g.volumes, nil)
				_, slope := stat.LinearRegression(g.years, g.volumes, nil, false)
				summary.Trend = slope
			}
			summary.YearsWithData = len(g.volumes)
		}
		summaries = append(summaries, summary)
	}

	r.logger.InfoContext(ctx, "sales summaries built",
		slog.Int("catalog_rows", len(catalog)),
		slog.Int("models_with_sales", len(grouped)))
	return summaries
}

// TrimSummaries aggregates trim-level records per model and left-joins
// them onto the catalog with the price-style nil policy.
func (r *Reconciler) TrimSummaries(ctx context.Context, catalog []domain.CatalogEntry, trims []domain.TrimEntry) []domain.TrimRow {
	idx := buildKeyIndex(catalog)

	grouped := make(map[domain.CompositeKey][]domain.TrimEntry)
	var unresolved int
	for _, trim := range trims {
		key, ok := idx.resolve(trim.GenmodelID, "", "")
		if !ok {
			unresolved++
			continue
		}
		grouped[key] = append(grouped[key], trim)
	}
	if unresolved > 0 {
		r.logger.WarnContext(ctx, "trim records reference unknown models",
			slog.Int("unresolved", unresolved))
	}

	rows := make([]domain.TrimRow, 0, len(catalog))
	for _, entry := range catalog {
		row := domain.TrimRow{Key: entry.Key}
		if entries, ok := grouped[entry.Key]; ok {
			row.Summary = summarizeTrims(entry.Key, entries)
		}
		rows = append(rows, row)
	}
	return rows
}

func summarizeTrims(key domain.CompositeKey, entries []domain.TrimEntry) *domain.TrimSummary {
	summary := &domain.TrimSummary{
		Key:     key,
		Count:   len(entries),
		YearMin: entries[0].Year,
		YearMax: entries[0].Year,
	}

	prices := make([]float64, 0, len(entries))
	fuelCounts := make(map[string]int)
	trimNames := make(map[string]bool)
	for _, e := range entries {
		prices = append(prices, e.Price)
		if e.Year < summary.YearMin {
			summary.YearMin = e.Year
		}
		if e.Year > summary.YearMax {
			summary.YearMax = e.Year
		}
		if e.FuelType != "" {
			fuelCounts[e.FuelType]++
		}
		if e.Trim != "" {
			trimNames[e.Trim] = true
		}
	}

	summary.PriceMin, summary.PriceMax = floatsBounds(prices)
	summary.PriceMean = stat.Mean(prices, nil)
	summary.TrimCount = len(trimNames)
	summary.CommonFuel = modalValue(fuelCounts)
	return summary
}

// modalValue returns the most frequent value; ties break to the
// lexicographically smallest so output is deterministic.
func modalValue(counts map[string]int) string {
	var best string
	bestCount := -1
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best = value
			bestCount = count
		}
	}
	return best
}

func floatsSum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func floatsBounds(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
