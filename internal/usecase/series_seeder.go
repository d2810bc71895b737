package usecase

import (
	"context"
	"fmt"

	domrepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/services/volume"
	applogger "CoinSentry/pkg/logger"
)

// SeriesSeeder backfills the in-memory volume series from the aggregated
// history tables so the analyzer has a working window right after startup
// instead of hours later.
type SeriesSeeder struct {
	history  domrepo.HistoryStore
	analyzer *volume.Analyzer
	l        *applogger.Logger
}

func NewSeriesSeeder(history domrepo.HistoryStore, analyzer *volume.Analyzer) *SeriesSeeder {
	return &SeriesSeeder{history: history, analyzer: analyzer}
}

// SetLogger injects a structured logger.
func (s *SeriesSeeder) SetLogger(l *applogger.Logger) { s.l = l }

// Seed loads the newest n points per symbol. Symbols that fail to load are
// reported but do not abort the rest; the stream will fill them eventually.
func (s *SeriesSeeder) Seed(ctx context.Context, symbols []string, n int, tf domrepo.Timeframe) error {
	if n <= 0 {
		return nil
	}
	var failed int
	for _, sym := range symbols {
		pts, err := s.history.GetLatestNPoints(ctx, sym, n, tf)
		if err != nil {
			failed++
			if s.l != nil {
				s.l.Warn("seed volume series failed",
					applogger.String("symbol", sym),
					applogger.Error(err),
				)
			}
			continue
		}
		var loaded int
		for _, p := range pts {
			if err := s.analyzer.AddPoint(sym, p.Timestamp, p.Volume, p.Price); err != nil {
				// History comes back ASC; an ordering error here means the
				// table itself is inconsistent.
				break
			}
			loaded++
		}
		if s.l != nil {
			s.l.Info("seeded volume series",
				applogger.String("symbol", sym),
				applogger.Int("points", loaded),
				applogger.String("tf", string(tf)),
			)
		}
	}
	if failed == len(symbols) && len(symbols) > 0 {
		return fmt.Errorf("seeding failed for all %d symbols", failed)
	}
	return nil
}
