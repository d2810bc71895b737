package usecase

import (
	"context"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/volume"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tick(symbol string, ts time.Time, price, vol float64) *models.PriceTick {
	return &models.PriceTick{Symbol: symbol, Timestamp: ts.Unix(), Price: price, Volume: vol}
}

func TestProcessClickHouseBackend(t *testing.T) {
	store := newFakeStorage()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	p := NewTickProcessor(pub, store, m, analyzer, "clickhouse", 0, 500, time.Second)

	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.Process(context.Background(), tick("BTCUSDT", ts, 64000, 1000)))

	assert.Len(t, store.ticks, 1)
	assert.Empty(t, pub.events)
	assert.Equal(t, 1, analyzer.Len("BTCUSDT"))
}

func TestProcessKafkaBackend(t *testing.T) {
	store := newFakeStorage()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	p := NewTickProcessor(pub, store, m, analyzer, "kafka", 0, 500, time.Second)

	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.Process(context.Background(), tick("BTCUSDT", ts, 64000, 1000)))

	assert.Empty(t, store.ticks)
	assert.Contains(t, pub.eventNames(), "tick")
}

func TestProcessOutOfOrderStillPersists(t *testing.T) {
	store := newFakeStorage()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	p := NewTickProcessor(pub, store, m, analyzer, "clickhouse", 0, 500, time.Second)

	ts := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Process(context.Background(), tick("BTCUSDT", ts, 64000, 1000)))
	require.NoError(t, p.Process(context.Background(), tick("BTCUSDT", ts.Add(-time.Hour), 63900, 900)))

	assert.Len(t, store.ticks, 2, "storage keeps every tick")
	assert.Equal(t, 1, analyzer.Len("BTCUSDT"), "analyzer rejects the stale point")
	assert.Equal(t, 1, m.errors["tick_out_of_order"])
}

func TestProcessPublishesSpikeAlert(t *testing.T) {
	store := newFakeStorage()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	p := NewTickProcessor(pub, store, m, analyzer, "clickhouse", 0, 500, time.Second)

	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24; i++ {
		require.NoError(t, analyzer.AddPoint("BTCUSDT", ts.Add(time.Duration(i)*time.Hour), 100, 64000))
	}

	spike := tick("BTCUSDT", ts.Add(24*time.Hour), 64500, 1000)
	require.NoError(t, p.Process(context.Background(), spike))

	assert.Contains(t, pub.eventNames(), "volume_spike")
	assert.Equal(t, 1, m.anomalies)
}

func TestProcessRetainTruncatesSeries(t *testing.T) {
	store := newFakeStorage()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	p := NewTickProcessor(pub, store, m, analyzer, "clickhouse", 10, 500, time.Second)

	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		require.NoError(t, p.Process(context.Background(), tick("BTCUSDT", ts.Add(time.Duration(i)*time.Minute), 64000, 1000)))
	}

	assert.Equal(t, 10, analyzer.Len("BTCUSDT"))
}

func TestProcessBatchUnknownBackend(t *testing.T) {
	store := newFakeStorage()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	p := NewTickProcessor(pub, store, m, analyzer, "postgres", 0, 500, time.Second)

	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	err := p.ProcessBatch(context.Background(), []*models.PriceTick{tick("BTCUSDT", ts, 64000, 1000)})
	assert.Error(t, err)
}
