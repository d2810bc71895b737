package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"CoinSentry/internal/domain/models"
	domsvc "CoinSentry/internal/domain/service"
	icache "CoinSentry/internal/service/cache"
	"CoinSentry/internal/service/metrics"
	"CoinSentry/internal/service/ratelimit"
	"CoinSentry/internal/usecase"
	applogger "CoinSentry/pkg/logger"
)

// ReportsHandler serves the volume reports over plain net/http with a bytes
// cache and a per-client rate limit. Kept alongside the Echo handler for
// deployments that mount the engine into an existing mux.
type ReportsHandler struct {
	analytics domsvc.VolumeAnalytics
	summary   *usecase.VolumeSummaryUseCase
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
	l         *applogger.Logger
}

func NewReportsHandler(analytics domsvc.VolumeAnalytics, summary *usecase.VolumeSummaryUseCase) *ReportsHandler {
	metrics.Register()
	return &ReportsHandler{analytics: analytics, summary: summary, rl: ratelimit.New()}
}

func (h *ReportsHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *ReportsHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *ReportsHandler) Spike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "spike"
		defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("reports.spike missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		window := parseInt(r.URL.Query().Get("window"), 0)
		if !h.rl.Allow(r.RemoteAddr+":spike", 5, 2) {
			if h.l != nil {
				h.l.Warn("reports.spike rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "spike:" + symbol + ":" + strconv.Itoa(window)
		if h.serveCached(w, endpoint, cacheKey) {
			return
		}
		rep, err := h.analytics.Spike(r.Context(), symbol, window)
		if err != nil {
			metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("reports.spike error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var res any = rep
		if rep == nil {
			res = map[string]any{"symbol": symbol, "spike": false}
		}
		h.writeJSON(w, endpoint, cacheKey, res, 15*time.Second)
	}
}

func (h *ReportsHandler) Anomaly() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "anomaly"
		defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("reports.anomaly missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		method := models.AnomalyMethod(r.URL.Query().Get("method"))
		if method == "" {
			method = models.MethodIQR
		}
		if !h.rl.Allow(r.RemoteAddr+":anom", 3, 1) {
			if h.l != nil {
				h.l.Warn("reports.anomaly rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "anom:" + symbol + ":" + string(method)
		if h.serveCached(w, endpoint, cacheKey) {
			return
		}
		res, err := h.analytics.Anomalies(r.Context(), symbol, method)
		if err != nil {
			metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("reports.anomaly error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, endpoint, cacheKey, res, 30*time.Second)
	}
}

func (h *ReportsHandler) WashTrading() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "wash"
		defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("reports.wash missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":wash", 3, 1) {
			if h.l != nil {
				h.l.Warn("reports.wash rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "wash:" + symbol
		if h.serveCached(w, endpoint, cacheKey) {
			return
		}
		res, err := h.analytics.WashTrading(r.Context(), symbol)
		if err != nil {
			metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("reports.wash error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, endpoint, cacheKey, res, 60*time.Second)
	}
}

func (h *ReportsHandler) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "summary"
		defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("reports.summary missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":summary", 3, 1) {
			if h.l != nil {
				h.l.Warn("reports.summary rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "summary:" + symbol
		if h.serveCached(w, endpoint, cacheKey) {
			return
		}
		res, err := h.summary.GetSummary(r.Context(), usecase.GetSummaryParams{Symbol: symbol})
		if err != nil {
			metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("reports.summary error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, endpoint, cacheKey, res, 30*time.Second)
	}
}

// serveCached writes a cached response if present.
func (h *ReportsHandler) serveCached(w http.ResponseWriter, endpoint, key string) bool {
	if h.cache == nil {
		return false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.l != nil {
			h.l.Warn("reports."+endpoint+" cache_get_error", applogger.Error(err))
		}
		return false
	}
	if !ok {
		if h.l != nil {
			h.l.Debug("reports."+endpoint+" cache_miss", applogger.String("key", key))
		}
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	if h.l != nil {
		h.l.Debug("reports."+endpoint+" cache_hit", applogger.String("key", key))
	}
	if _, err := w.Write(b); err != nil && h.l != nil {
		h.l.Warn("reports."+endpoint+" write_error", applogger.Error(err))
	}
	return true
}

// writeJSON marshals, caches, and writes a response.
func (h *ReportsHandler) writeJSON(w http.ResponseWriter, endpoint, key string, res any, ttl time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.Marshal(res)
	if err != nil {
		if h.l != nil {
			h.l.Error("reports."+endpoint+" marshal_error", applogger.Error(err))
		}
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(key, b, ttl); err != nil && h.l != nil {
			h.l.Warn("reports."+endpoint+" cache_set_error", applogger.Error(err))
		}
	}
	if _, err := w.Write(b); err != nil && h.l != nil {
		h.l.Warn("reports."+endpoint+" write_error", applogger.Error(err))
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
