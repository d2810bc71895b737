package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	pkgkafka "CoinSentry/pkg/kafka"
)

// KafkaBatchesHandler consumes scraped record batches from Kafka and runs
// them through the ingest pipeline.
type KafkaBatchesHandler struct {
	topic    string
	pipeline *BatchPipeline
	metrics  domrepo.Metrics
}

func NewKafkaBatchesHandler(topic string, pipeline *BatchPipeline, metrics domrepo.Metrics) *KafkaBatchesHandler {
	return &KafkaBatchesHandler{topic: topic, pipeline: pipeline, metrics: metrics}
}

func (h *KafkaBatchesHandler) Topic() string { return h.topic }

// incoming message schema: {kind, collected_at, records: [...]}
func (h *KafkaBatchesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Kind        string          `json:"kind"`
		CollectedAt int64           `json:"collected_at"`
		Records     []models.Record `json:"records"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	kind := models.RecordKind(m.Kind)
	if !kind.Valid() {
		h.metrics.RecordError("consumer_unknown_kind")
		return fmt.Errorf("unknown record kind: %q", m.Kind)
	}
	if m.CollectedAt > 1e11 { // ms
		m.CollectedAt = m.CollectedAt / 1000
	}
	if m.CollectedAt > 0 {
		// E2E latency from collection time to now (approx)
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.CollectedAt, 0)).Seconds())
	}

	start := time.Now()
	_, err := h.pipeline.Ingest(ctx, kind, m.Records)
	h.metrics.RecordLatency("batch_ingest_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_ingest")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBatchesHandler)(nil)
