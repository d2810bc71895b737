package usecase

import (
	"context"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/botdetect"
	"CoinSentry/internal/services/quality"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	quality []*models.QualityMetrics
	records map[models.RecordKind][]models.Record
	ticks   []*models.PriceTick
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{records: make(map[models.RecordKind][]models.Record)}
}

func (f *fakeStorage) Init(ctx context.Context) error { return nil }
func (f *fakeStorage) StoreTicks(ctx context.Context, ticks []*models.PriceTick) error {
	f.ticks = append(f.ticks, ticks...)
	return nil
}
func (f *fakeStorage) StoreRecords(ctx context.Context, kind models.RecordKind, records []models.Record) error {
	f.records[kind] = append(f.records[kind], records...)
	return nil
}
func (f *fakeStorage) StoreQuality(ctx context.Context, qm *models.QualityMetrics) error {
	f.quality = append(f.quality, qm)
	return nil
}
func (f *fakeStorage) QueryTicks(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PriceTick, error) {
	return f.ticks, nil
}
func (f *fakeStorage) QueryQuality(ctx context.Context, kind models.RecordKind, from, to time.Time, limit int) ([]*models.QualityMetrics, error) {
	return f.quality, nil
}
func (f *fakeStorage) Health(ctx context.Context) error { return nil }
func (f *fakeStorage) Close() error                     { return nil }

type published struct {
	event   string
	payload any
}

type fakePublisher struct {
	events []published
}

func (f *fakePublisher) Publish(ctx context.Context, event string, payload any) error {
	f.events = append(f.events, published{event: event, payload: payload})
	return nil
}
func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) eventNames() []string {
	names := make([]string, 0, len(f.events))
	for _, e := range f.events {
		names = append(names, e.event)
	}
	return names
}

type fakeMetrics struct {
	assessed  int
	flagged   int
	anomalies int
	errors    map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errors: make(map[string]int)} }

func (f *fakeMetrics) RecordBatchAssessed(kind string, score float64) { f.assessed++ }
func (f *fakeMetrics) RecordBotsFlagged(platform string, n int)      { f.flagged += n }
func (f *fakeMetrics) RecordAnomaly(symbol, method string)           { f.anomalies++ }
func (f *fakeMetrics) RecordError(kind string)                       { f.errors[kind]++ }
func (f *fakeMetrics) RecordLastPrice(symbol string, price float64)  {}
func (f *fakeMetrics) RecordLatency(op string, seconds float64)      {}

func newTestPipeline() (*BatchPipeline, *fakeStorage, *fakePublisher, *fakeMetrics) {
	store := newFakeStorage()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	p := NewBatchPipeline(
		quality.NewMonitor(quality.DefaultConfig()),
		botdetect.NewDetector(botdetect.DefaultConfig()),
		store, pub, m,
	)
	return p, store, pub, m
}

func redditRecord(id, author string) models.Record {
	return models.Record{
		"post_id":          id,
		"title":            "BTC discussion",
		"author":           author,
		"score":            42,
		"created_utc":      time.Now().Add(-2 * time.Hour).Unix(),
		"account_age_days": 400,
		"author_karma":     1500,
	}
}

func botRecord(id string) models.Record {
	r := redditRecord(id, "cryptopump12345")
	r["account_age_days"] = 2
	r["posting_frequency"] = 25
	return r
}

func TestAssessStoresQualityLog(t *testing.T) {
	p, store, pub, m := newTestPipeline()

	records := []models.Record{
		redditRecord("p1", "alice_reads"),
		redditRecord("p2", "bob_writes"),
	}
	qm, err := p.Assess(context.Background(), models.KindRedditPost, records)
	require.NoError(t, err)

	assert.Equal(t, models.KindRedditPost, qm.DataKind)
	assert.Equal(t, 2, qm.RecordCount)
	assert.Equal(t, models.StatusExcellent, qm.Status)
	require.Len(t, store.quality, 1)
	assert.Equal(t, 1, m.assessed)
	assert.Empty(t, pub.events, "healthy batches raise no alerts")
}

func TestAssessEmptyBatchAlerts(t *testing.T) {
	p, store, pub, _ := newTestPipeline()

	qm, err := p.Assess(context.Background(), models.KindPrice, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, qm.QualityScore)
	assert.Equal(t, models.StatusFailed, qm.Status)
	require.Len(t, store.quality, 1)
	assert.Contains(t, pub.eventNames(), "quality_alert")
}

func TestIngestScreensSocialBatch(t *testing.T) {
	p, store, pub, m := newTestPipeline()

	records := []models.Record{
		redditRecord("p1", "alice_reads"),
		botRecord("p2"),
		redditRecord("p3", "bob_writes"),
	}
	qm, err := p.Ingest(context.Background(), models.KindRedditPost, records)
	require.NoError(t, err)
	assert.Equal(t, 3, qm.RecordCount)

	stored := store.records[models.KindRedditPost]
	require.Len(t, stored, 2, "only clean records persist")
	id0, _ := stored[0].String("post_id")
	id1, _ := stored[1].String("post_id")
	assert.Equal(t, []string{"p1", "p3"}, []string{id0, id1}, "order preserved")

	assert.Equal(t, 1, m.flagged)
	assert.Contains(t, pub.eventNames(), "bots_flagged")
}

func TestIngestPriceBatchSkipsScreening(t *testing.T) {
	p, store, _, m := newTestPipeline()

	records := []models.Record{
		{"coin_symbol": "BTC", "timestamp": time.Now().Unix(), "price_usd": 64000.0},
		{"coin_symbol": "ETH", "timestamp": time.Now().Unix(), "price_usd": 3100.0},
	}
	_, err := p.Ingest(context.Background(), models.KindPrice, records)
	require.NoError(t, err)

	assert.Len(t, store.records[models.KindPrice], 2)
	assert.Equal(t, 0, m.flagged)
}

func TestScreenUnknownPlatform(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	_, _, _, err := p.Screen("twitter", []models.Record{redditRecord("p1", "alice_reads")})
	assert.Error(t, err)
}

func TestPlatformKind(t *testing.T) {
	k, err := PlatformKind("reddit")
	require.NoError(t, err)
	assert.Equal(t, models.KindRedditPost, k)

	k, err = PlatformKind("tiktok")
	require.NoError(t, err)
	assert.Equal(t, models.KindTikTokVideo, k)

	_, err = PlatformKind("myspace")
	assert.Error(t, err)
}
