package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleIngestsBatch(t *testing.T) {
	p, store, _, _ := newTestPipeline()
	m := newFakeMetrics()
	h := NewKafkaBatchesHandler("scraper.batches", p, m)

	assert.Equal(t, "scraper.batches", h.Topic())

	msg := map[string]any{
		"kind":         "reddit_post",
		"collected_at": time.Now().Unix(),
		"records": []models.Record{
			redditRecord("p1", "alice_reads"),
			redditRecord("p2", "bob_writes"),
		},
	}
	b, err := json.Marshal(msg)
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), b))
	assert.Len(t, store.records[models.KindRedditPost], 2)
	require.Len(t, store.quality, 1)
}

func TestHandleRejectsUnknownKind(t *testing.T) {
	p, _, _, _ := newTestPipeline()
	m := newFakeMetrics()
	h := NewKafkaBatchesHandler("scraper.batches", p, m)

	b, _ := json.Marshal(map[string]any{"kind": "tweets", "records": []models.Record{}})
	err := h.Handle(context.Background(), b)
	assert.Error(t, err)
	assert.Equal(t, 1, m.errors["consumer_unknown_kind"])
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	p, _, _, _ := newTestPipeline()
	m := newFakeMetrics()
	h := NewKafkaBatchesHandler("scraper.batches", p, m)

	err := h.Handle(context.Background(), []byte("{not json"))
	assert.Error(t, err)
	assert.Equal(t, 1, m.errors["consumer_unmarshal"])
}
