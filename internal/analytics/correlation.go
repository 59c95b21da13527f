package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"carmarket/pkg/contracts/domain"
)

// Correlation builds a symmetric correlation matrix over the chosen
// features. Each pair is computed over its pairwise-complete rows.
// Fewer than 2 usable features yield an empty matrix.
func (a *Analyzer) Correlation(ctx context.Context, table *FeatureTable, method domain.CorrelationMethod, features []string) domain.CorrelationMatrix {
	if len(features) == 0 {
		features = DefaultCorrelationFeatures
	}

	usable := make([]string, 0, len(features))
	for _, name := range features {
		if _, ok := table.Column(name); ok {
			usable = append(usable, name)
		}
	}
	if len(usable) < 2 {
		a.logger.WarnContext(ctx, "correlation skipped, not enough usable features",
			slog.Int("features", len(usable)))
		return domain.CorrelationMatrix{Method: method}
	}

	n := len(usable)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			xi, _ := table.Column(usable[i])
			xj, _ := table.Column(usable[j])
			r := pairCorrelation(xi, xj, method)
			values[i][j] = r
			values[j][i] = r
		}
	}

	return domain.CorrelationMatrix{Method: method, Features: usable, Values: values}
}

// TopCorrelations ranks feature pairs by absolute Pearson magnitude
// and labels each with a qualitative strength and direction.
func (a *Analyzer) TopCorrelations(ctx context.Context, table *FeatureTable, features []string) []domain.CorrelationPair {
	if len(features) == 0 {
		features = DefaultCorrelationFeatures
	}

	usable := make([]string, 0, len(features))
	for _, name := range features {
		if _, ok := table.Column(name); ok {
			usable = append(usable, name)
		}
	}
	if len(usable) < 2 {
		return nil
	}

	var pairs []domain.CorrelationPair
	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			xi, _ := table.Column(usable[i])
			xj, _ := table.Column(usable[j])
			pearson := pairCorrelation(xi, xj, domain.CorrelationPearson)
			if math.IsNaN(pearson) {
				continue
			}
			pairs = append(pairs, domain.CorrelationPair{
				FeatureA:       usable[i],
				FeatureB:       usable[j],
				Pearson:        pearson,
				Spearman:       pairCorrelation(xi, xj, domain.CorrelationSpearman),
				Interpretation: interpretCorrelation(pearson),
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].Pearson), math.Abs(pairs[j].Pearson)
		if ai != aj {
			return ai > aj
		}
		if pairs[i].FeatureA != pairs[j].FeatureA {
			return pairs[i].FeatureA < pairs[j].FeatureA
		}
		return pairs[i].FeatureB < pairs[j].FeatureB
	})

	limit := a.cfg.CorrelationPairs
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// pairCorrelation computes the coefficient over pairwise-complete
// observations. Spearman is Pearson over average ranks.
func pairCorrelation(x, y []float64, method domain.CorrelationMethod) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	if method == domain.CorrelationSpearman {
		xs = ranks(xs)
		ys = ranks(ys)
	}
	return stat.Correlation(xs, ys, nil)
}

// ranks assigns average ranks, so ties share the mean of the positions
// they span.
func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// interpretCorrelation labels strength by |r| thresholds 0.7/0.4/0.2
// and direction by sign.
func interpretCorrelation(r float64) string {
	var strength string
	switch abs := math.Abs(r); {
	case abs >= 0.7:
		strength = "Strong"
	case abs >= 0.4:
		strength = "Moderate"
	case abs >= 0.2:
		strength = "Weak"
	default:
		strength = "Very Weak"
	}
	if r < 0 {
		return strength + " Negative"
	}
	return strength + " Positive"
}
