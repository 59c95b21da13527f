package analytics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegression_PerfectFit(t *testing.T) {
	a := testAnalyzer()
	prices := make([]float64, 12)
	sales := make([]float64, 12)
	for i := range prices {
		prices[i] = float64(100 + 10*i)
		sales[i] = 5 + 3*prices[i]
	}
	table := buildTable(prices, sales)

	result := a.Regression(context.Background(), table)

	require.False(t, result.InsufficientData)
	assert.Equal(t, 12, result.SampleSize)
	assert.InDelta(t, 3, result.Slope, 1e-9)
	assert.InDelta(t, 5, result.Intercept, 1e-9)
	assert.InDelta(t, 1, result.RSquared, 1e-9)

	require.Len(t, result.Band, 12)
	for i, p := range result.Band {
		assert.InDelta(t, 5+3*p.X, p.Fitted, 1e-9)
		assert.InDelta(t, p.Fitted, p.Lower, 1e-6, "zero residual variance collapses the band")
		assert.InDelta(t, p.Fitted, p.Upper, 1e-6)
		if i > 0 {
			assert.GreaterOrEqual(t, p.X, result.Band[i-1].X, "band is sorted by price")
		}
	}
}

func TestRegression_NoisyNegativeSlope(t *testing.T) {
	a := testAnalyzer()
	noise := []float64{3, -2, 4, -1, 2, -3, 1, -4, 2, -2, 3, -1, 0, 1}
	prices := make([]float64, len(noise))
	sales := make([]float64, len(noise))
	for i := range prices {
		prices[i] = float64(1000 + 100*i)
		sales[i] = 500 - 0.2*prices[i] + noise[i]
	}
	table := buildTable(prices, sales)

	result := a.Regression(context.Background(), table)

	require.False(t, result.InsufficientData)
	assert.InDelta(t, -0.2, result.Slope, 0.02)
	assert.Less(t, result.PValue, 0.001)
	assert.Greater(t, result.RSquared, 0.95)
	for _, p := range result.Band {
		assert.Less(t, p.Lower, p.Fitted)
		assert.Greater(t, p.Upper, p.Fitted)
	}
}

func TestRegression_SkipsRowsWithoutPrice(t *testing.T) {
	a := testAnalyzer()
	prices := make([]float64, 14)
	sales := make([]float64, 14)
	for i := range prices {
		prices[i] = float64(100 + 10*i)
		sales[i] = 2 * prices[i]
	}
	prices[3] = math.NaN()
	prices[8] = math.NaN()
	table := buildTable(prices, sales)

	result := a.Regression(context.Background(), table)

	require.False(t, result.InsufficientData)
	assert.Equal(t, 12, result.SampleSize)
	assert.InDelta(t, 2, result.Slope, 1e-9)
}

func TestRegression_InsufficientData(t *testing.T) {
	a := testAnalyzer()
	table := buildTable([]float64{100, 200, 300}, []float64{10, 20, 30})

	result := a.Regression(context.Background(), table)
	assert.True(t, result.InsufficientData)
	assert.Equal(t, 3, result.SampleSize)
}

func TestRegression_ConstantPrice(t *testing.T) {
	a := testAnalyzer()
	prices := make([]float64, 12)
	sales := make([]float64, 12)
	for i := range prices {
		prices[i] = 500
		sales[i] = float64(10 * i)
	}
	table := buildTable(prices, sales)

	result := a.Regression(context.Background(), table)
	assert.True(t, result.InsufficientData)
}
