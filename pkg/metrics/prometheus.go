package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	batchesAssessed *prometheus.CounterVec
	qualityScore    *prometheus.GaugeVec
	botsFlagged     *prometheus.CounterVec
	anomalies       *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		batchesAssessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsentry_batches_assessed_total",
				Help: "Total number of record batches scored by the quality monitor",
			},
			[]string{"kind"},
		),
		qualityScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsentry_quality_score",
				Help: "Quality score of the most recent batch per record kind",
			},
			[]string{"kind"},
		),
		botsFlagged: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsentry_bots_flagged_total",
				Help: "Total number of records flagged as bot-generated",
			},
			[]string{"platform"},
		),
		anomalies: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsentry_volume_anomalies_total",
				Help: "Total number of volume anomalies and spikes detected",
			},
			[]string{"symbol", "method"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsentry_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsentry_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinsentry_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordBatchAssessed records one scored batch and its quality score.
func (r *Recorder) RecordBatchAssessed(kind string, score float64) {
	r.batchesAssessed.WithLabelValues(kind).Inc()
	r.qualityScore.WithLabelValues(kind).Set(score)
}

// RecordBotsFlagged records flagged records for a platform.
func (r *Recorder) RecordBotsFlagged(platform string, n int) {
	if n > 0 {
		r.botsFlagged.WithLabelValues(platform).Add(float64(n))
	}
}

// RecordAnomaly records one detected volume anomaly or spike.
func (r *Recorder) RecordAnomaly(symbol, method string) {
	r.anomalies.WithLabelValues(symbol, method).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
