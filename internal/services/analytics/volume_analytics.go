// Package analytics exposes the volume engine through the domain
// VolumeAnalytics interface with per-report TTL caching, so burst traffic on
// the reports API does not recompute identical answers.
package analytics

import (
	"context"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	domsvc "CoinSentry/internal/domain/service"
	icache "CoinSentry/internal/service/cache"
	"CoinSentry/internal/service/metrics"
	"CoinSentry/internal/services/volume"
	"CoinSentry/pkg/config"
)

// TTLs control how long each report type is served from cache.
type TTLs struct {
	Spike       time.Duration
	Anomaly     time.Duration
	Correlation time.Duration
	Wash        time.Duration
	Trend       time.Duration
}

// TTLsFromConfig lifts the analytics cache section out of the app config.
func TTLsFromConfig(cfg *config.Config) TTLs {
	return TTLs{
		Spike:       cfg.Analytics.CacheTTL.Spike,
		Anomaly:     cfg.Analytics.CacheTTL.Anomaly,
		Correlation: cfg.Analytics.CacheTTL.Correlation,
		Wash:        cfg.Analytics.CacheTTL.Wash,
		Trend:       cfg.Analytics.CacheTTL.Trend,
	}
}

// CachedVolumeAnalytics adapts the in-memory analyzer to the domain interface.
// Spike reports are cached including their "no spike" nil result; a nil entry
// is as valid an answer as a report.
type CachedVolumeAnalytics struct {
	analyzer *volume.Analyzer
	cache    *icache.TTLCache
	ttls     TTLs
}

func NewCachedVolumeAnalytics(analyzer *volume.Analyzer, ttls TTLs) domsvc.VolumeAnalytics {
	metrics.Register()
	return &CachedVolumeAnalytics{
		analyzer: analyzer,
		cache:    icache.NewTTLCache(),
		ttls:     ttls,
	}
}

func (a *CachedVolumeAnalytics) Spike(ctx context.Context, symbol string, window int) (*models.SpikeReport, error) {
	key := fmt.Sprintf("spike:%s:%d", symbol, window)
	if v, ok := a.cache.Get(key); ok {
		return v.(*models.SpikeReport), nil
	}
	rep, err := observe("spike", func() (*models.SpikeReport, error) {
		return a.analyzer.DetectSpike(symbol, window)
	})
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, rep, a.ttls.Spike)
	return rep, nil
}

func (a *CachedVolumeAnalytics) Anomalies(ctx context.Context, symbol string, method models.AnomalyMethod) (*models.AnomalyReport, error) {
	key := fmt.Sprintf("anomaly:%s:%s", symbol, method)
	if v, ok := a.cache.Get(key); ok {
		return v.(*models.AnomalyReport), nil
	}
	rep, err := observe("anomaly", func() (*models.AnomalyReport, error) {
		return a.analyzer.DetectAnomalies(symbol, method)
	})
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, rep, a.ttls.Anomaly)
	return rep, nil
}

func (a *CachedVolumeAnalytics) Correlation(ctx context.Context, symbol string, window int) (*models.CorrelationReport, error) {
	key := fmt.Sprintf("corr:%s:%d", symbol, window)
	if v, ok := a.cache.Get(key); ok {
		return v.(*models.CorrelationReport), nil
	}
	rep, err := observe("correlation", func() (*models.CorrelationReport, error) {
		return a.analyzer.Correlation(symbol, window)
	})
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, rep, a.ttls.Correlation)
	return rep, nil
}

func (a *CachedVolumeAnalytics) WashTrading(ctx context.Context, symbol string) (*models.WashTradingIndicators, error) {
	key := "wash:" + symbol
	if v, ok := a.cache.Get(key); ok {
		return v.(*models.WashTradingIndicators), nil
	}
	rep, err := observe("wash_trading", func() (*models.WashTradingIndicators, error) {
		return a.analyzer.WashTrading(symbol)
	})
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, rep, a.ttls.Wash)
	return rep, nil
}

func (a *CachedVolumeAnalytics) Trend(ctx context.Context, symbol string, window int) (*models.TrendReport, error) {
	key := fmt.Sprintf("trend:%s:%d", symbol, window)
	if v, ok := a.cache.Get(key); ok {
		return v.(*models.TrendReport), nil
	}
	rep, err := observe("trend", func() (*models.TrendReport, error) {
		return a.analyzer.Trend(symbol, window)
	})
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, rep, a.ttls.Trend)
	return rep, nil
}

// observe wraps a computation with the analytics latency/error vecs.
func observe[T any](endpoint string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
	}
	return v, err
}

var _ domsvc.VolumeAnalytics = (*CachedVolumeAnalytics)(nil)
