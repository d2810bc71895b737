package usecase

import (
	"context"
	"fmt"

	drepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/service/notify"
	"CoinSentry/internal/services/stats"
	"CoinSentry/internal/services/volume"
	applogger "CoinSentry/pkg/logger"
	"CoinSentry/pkg/queue"
)

// WashScanType is the queue message type for wash-trading scans.
const WashScanType = "wash_scan"

// WashScanPayload is the queue payload for one symbol scan.
type WashScanPayload struct {
	Symbol string `json:"symbol"`
}

// alertScoreFloor is the suspicion score at which a scan raises an alert.
const alertScoreFloor = 50

// WashScanJob runs the wash-trading composite for one symbol and raises
// alerts for suspicious ones.
type WashScanJob struct {
	analyzer *volume.Analyzer
	pub      drepo.Publisher
	notifier *notify.WebhookNotifier
	metrics  drepo.Metrics
	l        *applogger.Logger
}

func NewWashScanJob(analyzer *volume.Analyzer, pub drepo.Publisher, notifier *notify.WebhookNotifier, metrics drepo.Metrics) *WashScanJob {
	return &WashScanJob{analyzer: analyzer, pub: pub, notifier: notifier, metrics: metrics}
}

// SetLogger injects a structured logger.
func (j *WashScanJob) SetLogger(l *applogger.Logger) { j.l = l }

func (j *WashScanJob) Name() string { return "wash-scan" }
func (j *WashScanJob) Type() string { return WashScanType }

func (j *WashScanJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[WashScanPayload](payload)
	if err != nil {
		return fmt.Errorf("wash scan payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("wash scan: symbol required")
	}

	ind, err := j.analyzer.WashTrading(p.Symbol)
	if err != nil {
		// Young series are expected; everything else counts as a scan error.
		if stats.IsInsufficientData(err) {
			return nil
		}
		j.metrics.RecordError("wash_scan")
		return err
	}

	if ind.SuspicionScore < alertScoreFloor {
		return nil
	}

	j.metrics.RecordAnomaly(p.Symbol, "wash_trading")
	if j.l != nil {
		j.l.Warn("wash trading suspicion",
			applogger.String("symbol", p.Symbol),
			applogger.Any("suspicion_score", ind.SuspicionScore),
			applogger.Any("signals", ind.Signals),
		)
	}
	if j.pub != nil {
		if err := j.pub.Publish(ctx, "wash_trading", ind); err != nil {
			j.metrics.RecordError("wash_alert_publish")
		}
	}
	if j.notifier != nil && j.notifier.Enabled() {
		if err := j.notifier.Send(ctx, "wash_trading", ind); err != nil {
			j.metrics.RecordError("wash_alert_webhook")
		}
	}
	return nil
}

var _ queue.Job = (*WashScanJob)(nil)
