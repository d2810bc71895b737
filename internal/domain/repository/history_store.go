package repository

import (
	"context"
	"time"

	"CoinSentry/internal/domain/models"
)

// Timeframe represents volume aggregation buckets.
type Timeframe string

const (
	TF1m Timeframe = "1m"
	TF1h Timeframe = "1h"
	TF1d Timeframe = "1d"
)

// HistoryStore provides read-only access to aggregated volume history for
// seeding and backfilling the in-memory series.
type HistoryStore interface {
	GetVolumeHistory(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.VolumePoint, error)
	GetLatestNPoints(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.VolumePoint, error)
}
