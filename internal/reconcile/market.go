package reconcile

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"carmarket/pkg/contracts/domain"
)

// MarketShare sums total sales per automaker and converts them to
// percentages of the grand total, rounded to 2 decimals and sorted
// descending. A market with zero total sales yields zero shares.
func (r *Reconciler) MarketShare(ctx context.Context, summaries []domain.SalesSummary) []domain.MarketShareEntry {
	totals := make(map[string]float64)
	for _, s := range summaries {
		totals[s.Key.Automaker] += s.Total
	}

	var grand float64
	for _, total := range totals {
		grand += total
	}

	entries := make([]domain.MarketShareEntry, 0, len(totals))
	for automaker, total := range totals {
		entry := domain.MarketShareEntry{Automaker: automaker, TotalSales: total}
		if grand > 0 {
			entry.SharePercent = round2(total / grand * 100)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SharePercent != entries[j].SharePercent {
			return entries[i].SharePercent > entries[j].SharePercent
		}
		return entries[i].Automaker < entries[j].Automaker
	})

	r.logger.InfoContext(ctx, "market share computed",
		slog.Int("automakers", len(entries)),
		slog.Float64("total_sales", grand))
	return entries
}

// Concentration derives concentration metrics from a market share
// table. Shares are percentages, so the HHI ranges up to 10000.
func (r *Reconciler) Concentration(shares []domain.MarketShareEntry) domain.MarketConcentration {
	var c domain.MarketConcentration
	for i, entry := range shares {
		c.HHI += entry.SharePercent * entry.SharePercent
		if i < 3 {
			c.Top3Percent += entry.SharePercent
		}
		if i < 5 {
			c.Top5Percent += entry.SharePercent
		}
		if entry.SharePercent > 1 {
			c.SignificantPlayers++
		}
	}
	c.HHI = round2(c.HHI)
	c.Top3Percent = round2(c.Top3Percent)
	c.Top5Percent = round2(c.Top5Percent)
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
