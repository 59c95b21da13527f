package features

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"carmarket/pkg/contracts/domain"
)

// Engineer derives segmentation and elasticity features from the
// reconciled summary tables.
type Engineer struct {
	logger *slog.Logger
}

// NewEngineer creates a feature engineer.
func NewEngineer(logger *slog.Logger) *Engineer {
	return &Engineer{logger: logger.With(slog.String("component", "features"))}
}

// PriceTiers labels every catalog entry with a quantile-based price
// tier. Entries without price data get Unknown; the labels partition
// the catalog.
func (e *Engineer) PriceTiers(ctx context.Context, rows []domain.PriceRow) []domain.TierAssignment {
	means := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.Summary != nil {
			means = append(means, row.Summary.Mean)
		}
	}
	sort.Float64s(means)

	var p25, p75, p95 float64
	if len(means) > 0 {
		p25 = quantile(means, 0.25)
		p75 = quantile(means, 0.75)
		p95 = quantile(means, 0.95)
	}

	assignments := make([]domain.TierAssignment, 0, len(rows))
	counts := make(map[domain.PriceTier]int)
	for _, row := range rows {
		tier := domain.TierUnknown
		if row.Summary != nil {
			switch mean := row.Summary.Mean; {
			case mean <= p25:
				tier = domain.TierBudget
			case mean <= p75:
				tier = domain.TierMidRange
			case mean <= p95:
				tier = domain.TierPremium
			default:
				tier = domain.TierLuxury
			}
		}
		counts[tier]++
		assignments = append(assignments, domain.TierAssignment{Key: row.Key, Tier: tier})
	}

	e.logger.InfoContext(ctx, "price tiers assigned",
		slog.Int("rows", len(assignments)),
		slog.Int("unknown", counts[domain.TierUnknown]),
		slog.Float64("p25", p25), slog.Float64("p75", p75), slog.Float64("p95", p95))
	return assignments
}

// SalesBySegment sums total sales per price tier, excluding Unknown.
// All four priced tiers always appear, in fixed order.
func (e *Engineer) SalesBySegment(ctx context.Context, tiers []domain.TierAssignment, sales []domain.SalesSummary) []domain.SegmentSales {
	tierByKey := make(map[domain.CompositeKey]domain.PriceTier, len(tiers))
	for _, t := range tiers {
		tierByKey[t.Key] = t.Tier
	}

	totals := make(map[domain.PriceTier]*domain.SegmentSales)
	order := []domain.PriceTier{domain.TierBudget, domain.TierMidRange, domain.TierPremium, domain.TierLuxury}
	for _, tier := range order {
		totals[tier] = &domain.SegmentSales{Tier: tier}
	}

	for _, s := range sales {
		tier, ok := tierByKey[s.Key]
		if !ok || tier == domain.TierUnknown {
			continue
		}
		seg := totals[tier]
		seg.TotalSales += s.Total
		seg.Models++
	}

	out := make([]domain.SegmentSales, 0, len(order))
	for _, tier := range order {
		out = append(out, *totals[tier])
	}
	return out
}

// Elasticity computes the experimental row-order elasticity series:
// -(successive percent-change in total sales) / (successive
// percent-change in mean price) over the merged rows in catalog order.
// This is not a properly paired per-model delta; undefined ratios
// (zero denominators, first row) are nil.
func (e *Engineer) Elasticity(ctx context.Context, prices []domain.PriceRow, sales []domain.SalesSummary) []domain.ElasticityPoint {
	salesByKey := make(map[domain.CompositeKey]float64, len(sales))
	for _, s := range sales {
		salesByKey[s.Key] = s.Total
	}

	type merged struct {
		key   domain.CompositeKey
		price float64
		sales float64
	}
	rows := make([]merged, 0, len(prices))
	for _, row := range prices {
		if row.Summary == nil {
			continue
		}
		rows = append(rows, merged{
			key:   row.Key,
			price: row.Summary.Mean,
			sales: salesByKey[row.Key],
		})
	}

	points := make([]domain.ElasticityPoint, len(rows))
	for i, row := range rows {
		points[i] = domain.ElasticityPoint{Key: row.key}
		if i == 0 {
			continue
		}
		prev := rows[i-1]
		if prev.price == 0 || prev.sales == 0 {
			continue
		}
		priceChange := (row.price - prev.price) / prev.price
		if priceChange == 0 {
			continue
		}
		salesChange := (row.sales - prev.sales) / prev.sales
		v := -salesChange / priceChange
		points[i].Elasticity = &v
	}

	e.logger.InfoContext(ctx, "elasticity series computed", slog.Int("points", len(points)))
	return points
}

// PerformanceTier labels a total sales volume. Models the sales table
// never saw stay Unknown.
func PerformanceTierFor(summary domain.SalesSummary) domain.PerformanceTier {
	if summary.YearsWithData == 0 {
		return domain.PerformanceUnknown
	}
	switch {
	case summary.Total < 10_000:
		return domain.PerformanceLow
	case summary.Total < 50_000:
		return domain.PerformanceMedium
	case summary.Total < 100_000:
		return domain.PerformanceHigh
	default:
		return domain.PerformanceExcellent
	}
}

// PerformanceTiers labels every model's total sales volume.
func (e *Engineer) PerformanceTiers(ctx context.Context, sales []domain.SalesSummary) map[domain.CompositeKey]domain.PerformanceTier {
	out := make(map[domain.CompositeKey]domain.PerformanceTier, len(sales))
	for _, s := range sales {
		out[s.Key] = PerformanceTierFor(s)
	}
	return out
}

// quantile interpolates linearly between order statistics, matching
// the numeric semantics the summary consumers expect. Input must be
// sorted.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
