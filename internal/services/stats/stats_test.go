package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanStdDev(t *testing.T) {
	mean, stddev, err := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.138, stddev, 1e-3)
}

func TestMeanStdDevSingleSampleFails(t *testing.T) {
	_, _, err := MeanStdDev([]float64{42})
	require.Error(t, err)
	assert.True(t, IsInsufficientData(err))
}

func TestIQRBounds(t *testing.T) {
	lower, upper, err := IQRBounds([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 1.5)
	require.NoError(t, err)
	// Q1=2.75, Q3=6.25, IQR=3.5
	assert.InDelta(t, -2.5, lower, 1e-9)
	assert.InDelta(t, 11.5, upper, 1e-9)
}

func TestIQRBoundsTooFewSamples(t *testing.T) {
	_, _, err := IQRBounds([]float64{1, 2, 3}, 1.5)
	require.Error(t, err)
	assert.True(t, IsInsufficientData(err))
}

func TestZScores(t *testing.T) {
	zs, err := ZScores([]float64{10, 20, 30})
	require.NoError(t, err)
	require.Len(t, zs, 3)
	assert.InDelta(t, -1.0, zs[0], 1e-9)
	assert.InDelta(t, 0.0, zs[1], 1e-9)
	assert.InDelta(t, 1.0, zs[2], 1e-9)
}

func TestZScoresConstantSeries(t *testing.T) {
	_, err := ZScores([]float64{5, 5, 5, 5})
	require.Error(t, err)
	assert.True(t, IsDegenerateInput(err))
}

func TestPearsonPerfectLinear(t *testing.T) {
	xs := make([]float64, 10)
	ys := make([]float64, 10)
	for i := range xs {
		xs[i] = float64(i + 1)
		ys[i] = 2*xs[i] + 1
	}
	r, p, err := PearsonCorrelation(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-9)
	assert.InDelta(t, 0.0, p, 1e-9)
}

func TestPearsonNegative(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{10, 8, 6, 4, 2}
	r, p, err := PearsonCorrelation(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-9)
	assert.InDelta(t, 0.0, p, 1e-9)
}

func TestPearsonUncorrelatedPValue(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	ys := []float64{3, 9, 1, 7, 2, 8, 4, 6}
	r, p, err := PearsonCorrelation(xs, ys)
	require.NoError(t, err)
	assert.Less(t, abs(r), 0.5)
	assert.Greater(t, p, 0.05)
}

func TestPearsonTooShort(t *testing.T) {
	_, _, err := PearsonCorrelation([]float64{1, 2}, []float64{3, 4})
	require.Error(t, err)
	assert.True(t, IsInsufficientData(err))
}

func TestPearsonConstantSeries(t *testing.T) {
	_, _, err := PearsonCorrelation([]float64{1, 1, 1, 1}, []float64{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, IsDegenerateInput(err))

	_, _, err = PearsonCorrelation([]float64{1, 1, 1, 1}, []float64{7, 7, 7, 7})
	require.Error(t, err)
	assert.True(t, IsDegenerateInput(err))
}

func TestLinearTrend(t *testing.T) {
	slope, intercept, r2, err := LinearTrend([]float64{1, 3, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestLinearTrendFlat(t *testing.T) {
	slope, _, r2, err := LinearTrend([]float64{4, 4, 4, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, slope, 1e-9)
	assert.InDelta(t, 0.0, r2, 1e-9)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
