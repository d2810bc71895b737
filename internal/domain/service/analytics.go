package service

import (
	"context"

	"CoinSentry/internal/domain/models"
)

// QualityAssessor scores a batch of records of one kind.
type QualityAssessor interface {
	Assess(records []models.Record, kind models.RecordKind) *models.QualityMetrics
}

// BotScreener scores social records and partitions batches by platform.
type BotScreener interface {
	Screen(platform string, records []models.Record) (clean, flagged []models.Record, stats models.BotFilterStats, err error)
	RiskStats(platform string, records []models.Record) (models.BotRiskStats, error)
}

// VolumeAnalytics answers per-symbol volume questions over retained series.
// Implementations may serve from a cache; ctx bounds any backing lookups.
type VolumeAnalytics interface {
	Spike(ctx context.Context, symbol string, window int) (*models.SpikeReport, error)
	Anomalies(ctx context.Context, symbol string, method models.AnomalyMethod) (*models.AnomalyReport, error)
	Correlation(ctx context.Context, symbol string, window int) (*models.CorrelationReport, error)
	WashTrading(ctx context.Context, symbol string) (*models.WashTradingIndicators, error)
	Trend(ctx context.Context, symbol string, window int) (*models.TrendReport, error)
}
