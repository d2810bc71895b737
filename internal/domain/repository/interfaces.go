package repository

import (
	"context"
	"time"

	"CoinSentry/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes engine events (quality alerts, spike reports, flagged
// records) to the outbound topic keyed by event name.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreTicks(ctx context.Context, ticks []*models.PriceTick) error
	StoreRecords(ctx context.Context, kind models.RecordKind, records []models.Record) error
	StoreQuality(ctx context.Context, qm *models.QualityMetrics) error
	QueryTicks(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PriceTick, error)
	QueryQuality(ctx context.Context, kind models.RecordKind, from, to time.Time, limit int) ([]*models.QualityMetrics, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordBatchAssessed(kind string, score float64)
	RecordBotsFlagged(platform string, n int)
	RecordAnomaly(symbol, method string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
