package analytics

import (
	"context"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"carmarket/pkg/contracts/domain"
)

// TTest runs an independent two-sample t-test (pooled variance) on
// total sales between two price tiers, with Cohen's d effect size.
// Fewer than 2 observations in either group is an explicit
// insufficient-data result, not an error.
func (a *Analyzer) TTest(ctx context.Context, tiers []domain.TierAssignment, sales []domain.SalesSummary, groupA, groupB domain.PriceTier) domain.TTestResult {
	result := domain.TTestResult{GroupA: string(groupA), GroupB: string(groupB)}

	sampleA := tierSales(tiers, sales, groupA)
	sampleB := tierSales(tiers, sales, groupB)
	result.SampleA = len(sampleA)
	result.SampleB = len(sampleB)

	if len(sampleA) < 2 || len(sampleB) < 2 {
		result.InsufficientData = true
		return result
	}

	meanA, varA := stat.MeanVariance(sampleA, nil)
	meanB, varB := stat.MeanVariance(sampleB, nil)
	result.MeanA = meanA
	result.MeanB = meanB

	n1, n2 := float64(len(sampleA)), float64(len(sampleB))
	df := n1 + n2 - 2
	pooledVar := ((n1-1)*varA + (n2-1)*varB) / df
	se := math.Sqrt(pooledVar * (1/n1 + 1/n2))
	if se == 0 {
		result.InsufficientData = true
		return result
	}

	result.TStatistic = (meanA - meanB) / se
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	result.PValue = 2 * (1 - tDist.CDF(math.Abs(result.TStatistic)))
	result.Significant = result.PValue < a.cfg.Alpha

	// Cohen's d with the quadratic-mean pooled deviation
	pooledSD := math.Sqrt((varA + varB) / 2)
	if pooledSD > 0 {
		result.CohensD = (meanA - meanB) / pooledSD
	}
	result.EffectSize = effectSizeLabel(result.CohensD)

	a.logger.InfoContext(ctx, "t-test complete",
		slog.String("group_a", result.GroupA), slog.String("group_b", result.GroupB),
		slog.Float64("p_value", result.PValue))
	return result
}

func effectSizeLabel(d float64) string {
	switch abs := math.Abs(d); {
	case abs < 0.2:
		return "negligible"
	case abs < 0.5:
		return "small"
	case abs < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// ANOVA runs a one-way analysis of variance of total sales across all
// price tiers except Unknown. Groups need at least 2 observations to
// participate; fewer than 2 such groups is an insufficient-data
// result.
func (a *Analyzer) ANOVA(ctx context.Context, tiers []domain.TierAssignment, sales []domain.SalesSummary) domain.ANOVAResult {
	var result domain.ANOVAResult

	tierOrder := []domain.PriceTier{domain.TierBudget, domain.TierMidRange, domain.TierPremium, domain.TierLuxury}
	var groups [][]float64
	for _, tier := range tierOrder {
		sample := tierSales(tiers, sales, tier)
		if len(sample) < 2 {
			continue
		}
		groups = append(groups, sample)
		result.Groups = append(result.Groups, domain.GroupMean{
			Group: string(tier),
			Mean:  stat.Mean(sample, nil),
			Size:  len(sample),
		})
	}

	if len(groups) < 2 {
		result.InsufficientData = true
		return result
	}

	var grandSum float64
	var total int
	for _, g := range groups {
		for _, v := range g {
			grandSum += v
		}
		total += len(g)
	}
	grandMean := grandSum / float64(total)

	var ssBetween, ssWithin float64
	for i, g := range groups {
		mean := result.Groups[i].Mean
		ssBetween += float64(len(g)) * (mean - grandMean) * (mean - grandMean)
		for _, v := range g {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	dfBetween := float64(len(groups) - 1)
	dfWithin := float64(total - len(groups))
	if ssWithin == 0 || dfWithin <= 0 {
		result.InsufficientData = true
		return result
	}

	result.FStatistic = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	fDist := distuv.F{D1: dfBetween, D2: dfWithin}
	result.PValue = 1 - fDist.CDF(result.FStatistic)
	result.Significant = result.PValue < a.cfg.Alpha

	a.logger.InfoContext(ctx, "anova complete",
		slog.Int("groups", len(groups)), slog.Float64("p_value", result.PValue))
	return result
}

// Normality runs a Jarque-Bera test on a deterministically capped
// sample of the metric, deciding whether parametric tests are
// appropriate. Under 3 usable values is an insufficient-data result.
func (a *Analyzer) Normality(ctx context.Context, metric string, values []float64) domain.NormalityResult {
	result := domain.NormalityResult{Metric: metric}

	sample := dropNaN(values)
	if limit := a.cfg.NormalityCap; limit > 0 && len(sample) > limit {
		sample = sample[:limit]
	}
	result.SampleSize = len(sample)

	min := a.cfg.NormalityMin
	if min < 3 {
		min = 3
	}
	if len(sample) < min {
		result.InsufficientData = true
		return result
	}

	mean := stat.Mean(sample, nil)
	var m2, m3, m4 float64
	for _, v := range sample {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(len(sample))
	m2 /= n
	m3 /= n
	m4 /= n

	if m2 == 0 {
		// constant sample; trivially non-normal but well defined
		result.Statistic = 0
		result.PValue = 1
		result.Normal = true
		return result
	}

	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4 / (m2 * m2)
	result.Statistic = n / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)

	chi2 := distuv.ChiSquared{K: 2}
	result.PValue = 1 - chi2.CDF(result.Statistic)
	result.Normal = result.PValue > a.cfg.Alpha

	a.logger.InfoContext(ctx, "normality test complete",
		slog.String("metric", metric), slog.Int("sample", result.SampleSize),
		slog.Float64("p_value", result.PValue))
	return result
}

// tierSales collects total sales for the models assigned to one tier.
func tierSales(tiers []domain.TierAssignment, sales []domain.SalesSummary, tier domain.PriceTier) []float64 {
	keys := make(map[domain.CompositeKey]bool)
	for _, t := range tiers {
		if t.Tier == tier {
			keys[t.Key] = true
		}
	}

	var out []float64
	for _, s := range sales {
		if keys[s.Key] {
			out = append(out, s.Total)
		}
	}
	return out
}
