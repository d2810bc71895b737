package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	drepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/services/volume"
)

// TickProcessor feeds incoming ticks to the volume analyzer and routes raw
// persistence to the configured backend. Spikes detected on the hot path are
// published as alerts immediately.
type TickProcessor struct {
	pub      drepo.Publisher
	store    drepo.Storage
	metrics  drepo.Metrics
	analyzer *volume.Analyzer
	backend  string
	retain   int
	batchSz  int
	batchTO  time.Duration
}

// NewTickProcessor creates a new TickProcessor instance.
func NewTickProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	analyzer *volume.Analyzer,
	backend string,
	retain int,
	batchSz int,
	batchTO time.Duration,
) *TickProcessor {
	return &TickProcessor{
		pub:      pub,
		store:    store,
		metrics:  metrics,
		analyzer: analyzer,
		backend:  backend,
		retain:   retain,
		batchSz:  batchSz,
		batchTO:  batchTO,
	}
}

// Process handles a single tick: analyzer first, then the storage backend.
func (p *TickProcessor) Process(ctx context.Context, t *models.PriceTick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}

	start := time.Now()

	if err := p.analyzer.AddPoint(t.Symbol, time.Unix(t.Timestamp, 0).UTC(), t.Volume, t.Price); err != nil {
		// Out-of-order ticks happen on reconnects; count them but do not
		// fail persistence of the rest of the stream.
		p.metrics.RecordError("tick_out_of_order")
	} else {
		if p.retain > 0 {
			p.analyzer.Truncate(t.Symbol, p.retain)
		}
		p.checkSpike(ctx, t.Symbol)
	}

	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, "tick", t)
	case "clickhouse":
		err = p.store.StoreTicks(ctx, []*models.PriceTick{t})
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process tick: %w", err)
	}

	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch handles multiple ticks in a batch.
func (p *TickProcessor) ProcessBatch(ctx context.Context, ticks []*models.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	start := time.Now()

	for _, t := range ticks {
		if t == nil {
			continue
		}
		if err := p.analyzer.AddPoint(t.Symbol, time.Unix(t.Timestamp, 0).UTC(), t.Volume, t.Price); err != nil {
			p.metrics.RecordError("tick_out_of_order")
		}
	}

	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, "ticks", ticks)
	case "clickhouse":
		err = p.store.StoreTicks(ctx, ticks)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// checkSpike runs spike detection for the symbol's fresh point and publishes
// an alert when one fires. Alert delivery failures are counted, not returned;
// the tick itself was already accepted.
func (p *TickProcessor) checkSpike(ctx context.Context, symbol string) {
	rep, err := p.analyzer.DetectSpike(symbol, 0)
	if err != nil || rep == nil {
		return
	}
	p.metrics.RecordAnomaly(symbol, "spike")
	if p.pub != nil {
		if err := p.pub.Publish(ctx, "volume_spike", rep); err != nil {
			p.metrics.RecordError("spike_alert_publish")
		}
	}
}

// Close closes underlying resources if available.
func (p *TickProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
