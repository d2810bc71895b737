package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	drepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/services/botdetect"
	"CoinSentry/internal/services/quality"
	applogger "CoinSentry/pkg/logger"
)

// BatchPipeline is the ingest path for scraped record batches: score the
// batch, screen social records for bots, persist what survives and raise
// alerts for what does not. Used by both the Kafka consumer and the HTTP
// assessment endpoints.
type BatchPipeline struct {
	monitor  *quality.Monitor
	detector *botdetect.Detector
	store    drepo.Storage
	pub      drepo.Publisher
	metrics  drepo.Metrics
	l        *applogger.Logger
}

func NewBatchPipeline(
	monitor *quality.Monitor,
	detector *botdetect.Detector,
	store drepo.Storage,
	pub drepo.Publisher,
	metrics drepo.Metrics,
) *BatchPipeline {
	return &BatchPipeline{
		monitor:  monitor,
		detector: detector,
		store:    store,
		pub:      pub,
		metrics:  metrics,
	}
}

// SetLogger injects a structured logger.
func (p *BatchPipeline) SetLogger(l *applogger.Logger) { p.l = l }

// PlatformKind maps a screening platform name to its record kind.
func PlatformKind(platform string) (models.RecordKind, error) {
	switch platform {
	case "reddit":
		return models.KindRedditPost, nil
	case "tiktok":
		return models.KindTikTokVideo, nil
	default:
		return "", fmt.Errorf("unknown platform: %s", platform)
	}
}

// Assess scores a batch and persists the quality log entry. Alerts fire for
// POOR and FAILED batches.
func (p *BatchPipeline) Assess(ctx context.Context, kind models.RecordKind, records []models.Record) (*models.QualityMetrics, error) {
	start := time.Now()
	qm := p.monitor.Assess(records, kind)
	p.metrics.RecordBatchAssessed(string(kind), qm.QualityScore)

	if p.store != nil {
		if err := p.store.StoreQuality(ctx, &qm); err != nil {
			p.metrics.RecordError("quality_store")
			return nil, fmt.Errorf("store quality metrics: %w", err)
		}
	}
	if qm.Status == models.StatusPoor || qm.Status == models.StatusFailed {
		if p.pub != nil {
			if err := p.pub.Publish(ctx, "quality_alert", qm); err != nil {
				p.metrics.RecordError("quality_alert_publish")
			}
		}
	}
	p.metrics.RecordLatency("assess", time.Since(start).Seconds())
	return &qm, nil
}

// Screen partitions a social batch into clean and flagged records.
func (p *BatchPipeline) Screen(platform string, records []models.Record) (clean, flagged []models.Record, stats models.BotFilterStats, err error) {
	switch platform {
	case "reddit":
		clean, flagged, stats = p.detector.FilterReddit(records)
	case "tiktok":
		clean, flagged, stats = p.detector.FilterTikTok(records)
	default:
		return nil, nil, models.BotFilterStats{}, fmt.Errorf("unknown platform: %s", platform)
	}
	p.metrics.RecordBotsFlagged(platform, stats.BotCount)
	return clean, flagged, stats, nil
}

// RiskStats buckets a social batch by bot risk without filtering it.
func (p *BatchPipeline) RiskStats(platform string, records []models.Record) (models.BotRiskStats, error) {
	if _, err := PlatformKind(platform); err != nil {
		return models.BotRiskStats{}, err
	}
	return p.detector.RiskStats(records, platform), nil
}

// Ingest is the full path for a scraped batch: assess, screen social kinds,
// store clean records, publish flagged ones.
func (p *BatchPipeline) Ingest(ctx context.Context, kind models.RecordKind, records []models.Record) (*models.QualityMetrics, error) {
	qm, err := p.Assess(ctx, kind, records)
	if err != nil {
		return nil, err
	}

	toStore := records
	switch kind {
	case models.KindRedditPost, models.KindTikTokVideo:
		platform := "reddit"
		if kind == models.KindTikTokVideo {
			platform = "tiktok"
		}
		clean, flagged, stats, err := p.Screen(platform, records)
		if err != nil {
			return nil, err
		}
		toStore = clean
		if len(flagged) > 0 && p.pub != nil {
			if err := p.pub.Publish(ctx, "bots_flagged", map[string]any{
				"platform": platform,
				"stats":    stats,
				"records":  flagged,
			}); err != nil {
				p.metrics.RecordError("bots_flagged_publish")
			}
		}
		if p.l != nil && stats.BotCount > 0 {
			p.l.Info("screened batch",
				applogger.String("platform", platform),
				applogger.Int("total", stats.Total),
				applogger.Int("flagged", stats.BotCount),
			)
		}
	}

	if p.store != nil && len(toStore) > 0 {
		if err := p.store.StoreRecords(ctx, kind, toStore); err != nil {
			p.metrics.RecordError("records_store")
			return nil, fmt.Errorf("store records: %w", err)
		}
	}
	return qm, nil
}
