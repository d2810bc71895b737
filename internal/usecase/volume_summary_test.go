package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/volume"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalytics struct {
	spike   *models.SpikeReport
	wash    *models.WashTradingIndicators
	trend   *models.TrendReport
	corrErr error
}

func (f *fakeAnalytics) Spike(ctx context.Context, symbol string, window int) (*models.SpikeReport, error) {
	return f.spike, nil
}

func (f *fakeAnalytics) Anomalies(ctx context.Context, symbol string, method models.AnomalyMethod) (*models.AnomalyReport, error) {
	return &models.AnomalyReport{Symbol: symbol, Method: method}, nil
}

func (f *fakeAnalytics) Correlation(ctx context.Context, symbol string, window int) (*models.CorrelationReport, error) {
	if f.corrErr != nil {
		return nil, f.corrErr
	}
	return &models.CorrelationReport{Symbol: symbol, R: 0.8}, nil
}

func (f *fakeAnalytics) WashTrading(ctx context.Context, symbol string) (*models.WashTradingIndicators, error) {
	return f.wash, nil
}

func (f *fakeAnalytics) Trend(ctx context.Context, symbol string, window int) (*models.TrendReport, error) {
	return f.trend, nil
}

func TestGetSummaryRequiresSymbol(t *testing.T) {
	uc := NewVolumeSummaryUseCase(&fakeAnalytics{}, volume.NewAnalyzer(volume.DefaultConfig()))
	_, err := uc.GetSummary(context.Background(), GetSummaryParams{})
	assert.Error(t, err)
}

func TestGetSummaryMergesAllParts(t *testing.T) {
	fa := &fakeAnalytics{
		spike: &models.SpikeReport{Symbol: "BTCUSDT", ZScore: 4.2},
		wash:  &models.WashTradingIndicators{Symbol: "BTCUSDT", SuspicionScore: 30},
		trend: &models.TrendReport{Symbol: "BTCUSDT", Direction: models.TrendIncreasing},
	}
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, analyzer.AddPoint("BTCUSDT", ts.Add(time.Duration(i)*time.Hour), 1000, 64000))
	}

	uc := NewVolumeSummaryUseCase(fa, analyzer)
	res, err := uc.GetSummary(context.Background(), GetSummaryParams{Symbol: "BTCUSDT"})
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", res.Symbol)
	assert.Equal(t, 5, res.DataPoints)
	require.NotNil(t, res.Spike)
	assert.Equal(t, 4.2, res.Spike.ZScore)
	require.NotNil(t, res.Anomalies)
	assert.Equal(t, models.MethodIQR, res.Anomalies.Method, "method defaults to iqr")
	require.NotNil(t, res.Correlation)
	require.NotNil(t, res.WashTrading)
	require.NotNil(t, res.Trend)
	assert.Nil(t, res.Errors)
}

func TestGetSummaryPartialFailure(t *testing.T) {
	fa := &fakeAnalytics{
		trend:   &models.TrendReport{Symbol: "BTCUSDT", Direction: models.TrendFlat},
		corrErr: errors.New("series too short"),
	}
	uc := NewVolumeSummaryUseCase(fa, volume.NewAnalyzer(volume.DefaultConfig()))

	res, err := uc.GetSummary(context.Background(), GetSummaryParams{Symbol: "BTCUSDT", Method: models.MethodZScore})
	require.NoError(t, err)

	assert.Nil(t, res.Correlation)
	require.NotNil(t, res.Errors)
	assert.Contains(t, res.Errors["correlation"], "too short")
	require.NotNil(t, res.Trend, "other parts still present")
	assert.Equal(t, models.MethodZScore, res.Anomalies.Method)
}
