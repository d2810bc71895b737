package volume

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/stats"
)

var t0 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func feed(t *testing.T, a *Analyzer, symbol string, vols []float64, prices []float64) {
	t.Helper()
	for i, v := range vols {
		p := 1.0
		if prices != nil {
			p = prices[i]
		}
		require.NoError(t, a.AddPoint(symbol, t0.Add(time.Duration(i)*time.Hour), v, p))
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestAddPointOutOfOrder(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	require.NoError(t, a.AddPoint("BTCUSDT", t0, 100, 50000))
	require.NoError(t, a.AddPoint("BTCUSDT", t0.Add(time.Hour), 110, 50100))

	err := a.AddPoint("BTCUSDT", t0.Add(30*time.Minute), 120, 50200)
	require.Error(t, err)
	var ooo *OutOfOrderError
	require.True(t, errors.As(err, &ooo))
	assert.Equal(t, "BTCUSDT", ooo.Symbol)
	assert.Equal(t, 2, a.Len("BTCUSDT")) // rejected point was not stored
}

func TestAddPointEqualTimestampAllowed(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	require.NoError(t, a.AddPoint("ETHUSDT", t0, 100, 3000))
	require.NoError(t, a.AddPoint("ETHUSDT", t0, 105, 3001))
	assert.Equal(t, 2, a.Len("ETHUSDT"))
}

func TestDetectSpikeFlatHistory(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "DOGEUSDT", append(repeat(100, 24), 1000), nil)

	rep, err := a.DetectSpike("DOGEUSDT", 0)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, 1000.0, rep.LatestVolume)
	assert.InDelta(t, 100.0, rep.MeanVolume, 1e-9)
	assert.InDelta(t, 900.0, rep.PctIncrease, 1e-9)
	assert.Equal(t, 24, rep.Window)
}

func TestDetectSpikeModestIncreaseIsNotSpike(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "DOGEUSDT", append(repeat(100, 24), 105), nil)

	rep, err := a.DetectSpike("DOGEUSDT", 0)
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestDetectSpikeInsufficientHistory(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "DOGEUSDT", repeat(100, 10), nil)

	rep, err := a.DetectSpike("DOGEUSDT", 0)
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestDetectSpikeNoisyHistory(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	// Alternating 90/110 history: mean 100, sample stddev ~10.2.
	vols := make([]float64, 0, 25)
	for i := 0; i < 24; i++ {
		if i%2 == 0 {
			vols = append(vols, 90)
		} else {
			vols = append(vols, 110)
		}
	}
	vols = append(vols, 150) // ~4.9 stddevs above the mean
	feed(t, a, "SOLUSDT", vols, nil)

	rep, err := a.DetectSpike("SOLUSDT", 0)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Greater(t, rep.ZScore, 2.0)
}

func TestDetectAnomaliesIQR(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "BTCUSDT", append(repeat(100, 20), 1000), nil)

	rep, err := a.DetectAnomalies("BTCUSDT", models.MethodIQR)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, rep.Indices)
	assert.Equal(t, 21, rep.SeriesLen)
}

func TestDetectAnomaliesZScore(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "BTCUSDT", append(repeat(100, 30), 1000), nil)

	rep, err := a.DetectAnomalies("BTCUSDT", models.MethodZScore)
	require.NoError(t, err)
	assert.Equal(t, []int{30}, rep.Indices)
	assert.Equal(t, 3.0, rep.ZThreshold)
}

func TestDetectAnomaliesConstantSeries(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "BTCUSDT", repeat(100, 30), nil)

	rep, err := a.DetectAnomalies("BTCUSDT", models.MethodZScore)
	require.NoError(t, err)
	assert.Empty(t, rep.Indices)
}

func TestDetectAnomaliesTooFewPoints(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "BTCUSDT", repeat(100, 3), nil)

	_, err := a.DetectAnomalies("BTCUSDT", models.MethodIQR)
	require.Error(t, err)
	assert.True(t, stats.IsInsufficientData(err))
}

func TestDetectAnomaliesUnknownMethod(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "BTCUSDT", repeat(100, 30), nil)

	_, err := a.DetectAnomalies("BTCUSDT", models.AnomalyMethod("mad"))
	assert.Error(t, err)
}

func TestCorrelationWindowed(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	vols := make([]float64, 0, 10)
	prices := make([]float64, 0, 10)
	for i := 1; i <= 10; i++ {
		vols = append(vols, float64(i)*100)
		prices = append(prices, float64(i)*0.5)
	}
	feed(t, a, "ETHUSDT", vols, prices)

	rep, err := a.Correlation("ETHUSDT", 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rep.R, 1e-9)
	assert.InDelta(t, 0.0, rep.PValue, 1e-9)
	assert.Equal(t, 10, rep.Window)

	rep, err = a.Correlation("ETHUSDT", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Window)
}

func TestCorrelationConstantPricePropagates(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "ETHUSDT", []float64{1, 2, 3, 4, 5}, repeat(3000, 5))

	_, err := a.Correlation("ETHUSDT", 0)
	require.Error(t, err)
	assert.True(t, stats.IsDegenerateInput(err))
}

func TestTrendDirections(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	up := make([]float64, 0, 10)
	for i := 0; i < 10; i++ {
		up = append(up, 100+float64(i)*50)
	}
	feed(t, a, "UP", up, nil)
	rep, err := a.Trend("UP", 0)
	require.NoError(t, err)
	assert.Equal(t, models.TrendIncreasing, rep.Direction)
	assert.InDelta(t, 50.0, rep.Slope, 1e-9)
	assert.InDelta(t, 1.0, rep.RSquared, 1e-9)

	down := make([]float64, 0, 10)
	for i := 0; i < 10; i++ {
		down = append(down, 1000-float64(i)*50)
	}
	feed(t, a, "DOWN", down, nil)
	rep, err = a.Trend("DOWN", 0)
	require.NoError(t, err)
	assert.Equal(t, models.TrendDecreasing, rep.Direction)

	feed(t, a, "FLAT", repeat(500, 10), nil)
	rep, err = a.Trend("FLAT", 0)
	require.NoError(t, err)
	assert.Equal(t, models.TrendFlat, rep.Direction)
	assert.Equal(t, 0.0, rep.RSquared)
}

func TestTrendTooShort(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "X", []float64{100}, nil)
	_, err := a.Trend("X", 0)
	assert.True(t, stats.IsInsufficientData(err))
}

func TestWashTradingVolumeSpikeWithFlatPrice(t *testing.T) {
	// A month of organic-looking data followed by a single huge volume print
	// while the price stays pinned near 1.0.
	a := NewAnalyzer(DefaultConfig())
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 30; i++ {
		vol := 1000 + rng.Float64()*100 - 50
		price := 1.0 + rng.Float64()*0.02 - 0.01
		require.NoError(t, a.AddPoint("SCAMUSDT", t0.Add(time.Duration(i)*24*time.Hour), vol, price))
	}
	require.NoError(t, a.AddPoint("SCAMUSDT", t0.Add(30*24*time.Hour), 50000, 1.0))

	ind, err := a.WashTrading("SCAMUSDT")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ind.SuspicionScore, 40.0)
	assert.LessOrEqual(t, ind.SuspicionScore, 100.0)
	assert.Contains(t, ind.Signals, "high_volume_low_volatility")
	// The spike blows up the volume CV, so uniform volume must not fire.
	assert.NotContains(t, ind.Signals, "uniform_volume")
	assert.Less(t, ind.PriceVolatility, 0.02)
}

func TestWashTradingUniformVolume(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	for i := 0; i < 30; i++ {
		price := 1.0 + 0.1*float64(i%5)
		require.NoError(t, a.AddPoint("BOTUSDT", t0.Add(time.Duration(i)*time.Hour), 1000, price))
	}

	ind, err := a.WashTrading("BOTUSDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"uniform_volume"}, ind.Signals)
	assert.Equal(t, 30.0, ind.SuspicionScore)
	assert.Equal(t, 0.0, ind.VolumeCV)
}

func TestWashTradingDecorrelation(t *testing.T) {
	// Volume and price both vary but along orthogonal patterns, so the
	// correlation is exactly zero while neither degenerate path triggers.
	a := NewAnalyzer(DefaultConfig())
	volPattern := []float64{1, -1}
	pricePattern := []float64{1, 1, -1, -1}
	for i := 0; i < 28; i++ {
		vol := 1000 + 300*volPattern[i%2]
		price := 1.0 + 0.05*pricePattern[i%4]
		require.NoError(t, a.AddPoint("CHOPUSDT", t0.Add(time.Duration(i)*time.Hour), vol, price))
	}

	ind, err := a.WashTrading("CHOPUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ind.Correlation, 1e-9)
	assert.Contains(t, ind.Signals, "volume_price_decorrelation")
	assert.NotContains(t, ind.Signals, "uniform_volume")
	assert.NotContains(t, ind.Signals, "high_volume_low_volatility")
	assert.Equal(t, 30.0, ind.SuspicionScore)
}

func TestWashTradingInsufficientHistory(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "NEWUSDT", repeat(100, 10), nil)

	_, err := a.WashTrading("NEWUSDT")
	require.Error(t, err)
	assert.True(t, stats.IsInsufficientData(err))
}

func TestTruncateKeepsNewest(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "BTCUSDT", []float64{1, 2, 3, 4, 5}, nil)
	a.Truncate("BTCUSDT", 2)
	assert.Equal(t, 2, a.Len("BTCUSDT"))

	// Newest points survive; appending continues from the retained tail.
	require.NoError(t, a.AddPoint("BTCUSDT", t0.Add(10*time.Hour), 6, 1))
	assert.Equal(t, 3, a.Len("BTCUSDT"))
}

func TestSymbolsSorted(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	feed(t, a, "ZEC", []float64{1}, nil)
	feed(t, a, "ADA", []float64{1}, nil)
	feed(t, a, "BTC", []float64{1}, nil)
	assert.Equal(t, []string{"ADA", "BTC", "ZEC"}, a.Symbols())
}
