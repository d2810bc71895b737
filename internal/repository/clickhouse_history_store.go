package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	pkgch "CoinSentry/pkg/clickhouse"
	applogger "CoinSentry/pkg/logger"
)

// CHHistoryStore implements HistoryStore backed by ClickHouse. It reads the
// aggregated volume tables the raw ticks materialize into; used to seed the
// in-memory series on startup and to backfill after restarts.
type CHHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHHistoryStore) GetVolumeHistory(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.VolumePoint, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, vol, close
        FROM %s
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse volume_history query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get volume history: %w", err)
	}
	defer rows.Close()

	out := make([]models.VolumePoint, 0, 1024)
	for rows.Next() {
		var p models.VolumePoint
		if err := rows.Scan(&p.Timestamp, &p.Volume, &p.Price); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse volume_history scan error",
					applogger.String("table", table),
					applogger.String("symbol", symbol),
					applogger.String("tf", string(tf)),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan volume point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse volume_history rows error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse volume_history ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHHistoryStore) GetLatestNPoints(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.VolumePoint, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, vol, close
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_points query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest points: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.VolumePoint, 0, n)
	for rows.Next() {
		var p models.VolumePoint
		if err := rows.Scan(&p.Timestamp, &p.Volume, &p.Price); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse latest_points scan error",
					applogger.String("table", table),
					applogger.String("symbol", symbol),
					applogger.String("tf", string(tf)),
					applogger.Int("limit", n),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan volume point: %w", err)
		}
		tmp = append(tmp, p)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_points rows error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_points ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func tableForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1m:
		return "coinsentry.volume_1m", nil
	case domrepo.TF1h:
		return "coinsentry.volume_1h", nil
	case domrepo.TF1d:
		return "coinsentry.volume_1d", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}
