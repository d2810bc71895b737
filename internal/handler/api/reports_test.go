package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"CoinSentry/internal/domain/models"
	icache "CoinSentry/internal/service/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalytics struct {
	spike *models.SpikeReport
	wash  *models.WashTradingIndicators
}

func (s *stubAnalytics) Spike(ctx context.Context, symbol string, window int) (*models.SpikeReport, error) {
	return s.spike, nil
}

func (s *stubAnalytics) Anomalies(ctx context.Context, symbol string, method models.AnomalyMethod) (*models.AnomalyReport, error) {
	return &models.AnomalyReport{Symbol: symbol, Method: method, Indices: []int{3}}, nil
}

func (s *stubAnalytics) Correlation(ctx context.Context, symbol string, window int) (*models.CorrelationReport, error) {
	return &models.CorrelationReport{Symbol: symbol, R: 0.5}, nil
}

func (s *stubAnalytics) WashTrading(ctx context.Context, symbol string) (*models.WashTradingIndicators, error) {
	return s.wash, nil
}

func (s *stubAnalytics) Trend(ctx context.Context, symbol string, window int) (*models.TrendReport, error) {
	return &models.TrendReport{Symbol: symbol, Direction: models.TrendFlat}, nil
}

func TestSpikeEndpointRequiresSymbol(t *testing.T) {
	h := NewReportsHandler(&stubAnalytics{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/volume/spike", nil)
	rec := httptest.NewRecorder()
	h.Spike()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpikeEndpointNoSpike(t *testing.T) {
	h := NewReportsHandler(&stubAnalytics{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/volume/spike?symbol=BTCUSDT", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.Spike()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["spike"])
	assert.Equal(t, "BTCUSDT", body["symbol"])
}

func TestAnomalyEndpointServesCached(t *testing.T) {
	st := &stubAnalytics{}
	h := NewReportsHandler(st, nil)
	h.SetCache(icache.NewTTLCache())

	req := httptest.NewRequest(http.MethodGet, "/volume/anomaly?symbol=BTCUSDT&method=iqr", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.Anomaly()(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()

	// second request hits the bytes cache, not the analytics layer
	req2 := httptest.NewRequest(http.MethodGet, "/volume/anomaly?symbol=BTCUSDT&method=iqr", nil)
	req2.RemoteAddr = "10.0.0.2:5000"
	rec2 := httptest.NewRecorder()
	h.Anomaly()(rec2, req2)
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, first, rec2.Body.String())
}

func TestWashEndpoint(t *testing.T) {
	st := &stubAnalytics{wash: &models.WashTradingIndicators{
		Symbol:         "BTCUSDT",
		SuspicionScore: 70,
		Signals:        []string{"uniform_volume"},
	}}
	h := NewReportsHandler(st, nil)

	req := httptest.NewRequest(http.MethodGet, "/volume/wash?symbol=BTCUSDT", nil)
	req.RemoteAddr = "10.0.0.3:5000"
	rec := httptest.NewRecorder()
	h.WashTrading()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var ind models.WashTradingIndicators
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ind))
	assert.Equal(t, 70.0, ind.SuspicionScore)
}

func TestSummaryEndpointRequiresSymbol(t *testing.T) {
	h := NewReportsHandler(&stubAnalytics{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/volume/summary", nil)
	req.RemoteAddr = "10.0.0.4:5000"
	rec := httptest.NewRecorder()
	h.Summary()(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
