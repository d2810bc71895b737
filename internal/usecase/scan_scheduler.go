package usecase

import (
	"context"
	"sync"
	"time"

	"CoinSentry/internal/services/volume"
	applogger "CoinSentry/pkg/logger"
	"CoinSentry/pkg/queue"
)

// ScanScheduler periodically enqueues a wash-trading scan per tracked symbol.
// Scans run through the Redis queue so a slow symbol never blocks the next
// cycle and failed scans get the queue's retry handling.
type ScanScheduler struct {
	q        queue.QueueService
	analyzer *volume.Analyzer
	interval time.Duration
	l        *applogger.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	started bool
}

func NewScanScheduler(q queue.QueueService, analyzer *volume.Analyzer, interval time.Duration) *ScanScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ScanScheduler{q: q, analyzer: analyzer, interval: interval, stopCh: make(chan struct{})}
}

// SetLogger injects a structured logger.
func (s *ScanScheduler) SetLogger(l *applogger.Logger) { s.l = l }

// Start launches the scheduling loop.
func (s *ScanScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.enqueueCycle(ctx)
			}
		}
	}()
}

// Stop stops the scheduling loop.
func (s *ScanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	close(s.stopCh)
}

func (s *ScanScheduler) enqueueCycle(ctx context.Context) {
	symbols := s.analyzer.Symbols()
	for _, sym := range symbols {
		if err := s.q.PublishMessage(ctx, WashScanType, &WashScanPayload{Symbol: sym}); err != nil {
			if s.l != nil {
				s.l.Error("enqueue wash scan failed",
					applogger.String("symbol", sym),
					applogger.Error(err),
				)
			}
		}
	}
	if s.l != nil {
		s.l.Info("wash scan cycle enqueued", applogger.Int("symbols", len(symbols)))
	}
}
