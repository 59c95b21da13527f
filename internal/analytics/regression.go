package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"carmarket/pkg/contracts/domain"
)

// Regression fits total sales on mean price by ordinary least squares
// and derives the slope's p-value plus a 95% confidence band over the
// observed price range. Fewer complete rows than the configured
// minimum is an insufficient-data result.
func (a *Analyzer) Regression(ctx context.Context, table *FeatureTable) domain.RegressionResult {
	var result domain.RegressionResult

	priceCol, _ := table.Column(FeaturePriceMean)
	salesCol, _ := table.Column(FeatureTotalSales)

	var xs, ys []float64
	for i := range priceCol {
		if math.IsNaN(priceCol[i]) || math.IsNaN(salesCol[i]) {
			continue
		}
		xs = append(xs, priceCol[i])
		ys = append(ys, salesCol[i])
	}
	result.SampleSize = len(xs)

	min := a.cfg.RegressionMin
	if min < 3 {
		min = 3
	}
	if len(xs) < min {
		result.InsufficientData = true
		return result
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	result.Intercept = intercept
	result.Slope = slope
	result.RSquared = stat.RSquared(xs, ys, nil, intercept, slope)

	n := float64(len(xs))
	xMean := stat.Mean(xs, nil)
	var sse, sxx float64
	for i := range xs {
		residual := ys[i] - (intercept + slope*xs[i])
		sse += residual * residual
		sxx += (xs[i] - xMean) * (xs[i] - xMean)
	}

	df := n - 2
	if sxx == 0 || df <= 0 {
		result.InsufficientData = true
		return result
	}
	residualVar := sse / df

	slopeSE := math.Sqrt(residualVar / sxx)
	if slopeSE > 0 {
		t := slope / slopeSE
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		result.PValue = 2 * (1 - tDist.CDF(math.Abs(t)))
	}

	// confidence band of the mean response, sorted by x for plotting
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	result.Band = make([]domain.RegressionPoint, len(sorted))
	for i, x := range sorted {
		fitted := intercept + slope*x
		se := math.Sqrt(residualVar * (1/n + (x-xMean)*(x-xMean)/sxx))
		result.Band[i] = domain.RegressionPoint{
			X:      x,
			Fitted: fitted,
			Lower:  fitted - 1.96*se,
			Upper:  fitted + 1.96*se,
		}
	}

	a.logger.InfoContext(ctx, "regression complete",
		slog.Int("rows", result.SampleSize),
		slog.Float64("slope", slope), slog.Float64("r_squared", result.RSquared))
	return result
}
