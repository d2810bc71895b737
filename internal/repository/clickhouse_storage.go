package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/domain/repository"
	pkgkafka "CoinSentry/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db       *sql.DB
	database string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, database string) repository.Storage {
	return &ClickHouseStorage{db: db, database: database}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) StoreTicks(ctx context.Context, ticks []*models.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" || t.Timestamp == 0 {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", t.Symbol, t.Timestamp)
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(t.Timestamp, 0),
				t.Symbol,
				t.Price,
				t.Volume,
				"binance",
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s.ticks (ts, symbol, price, volume, source, event_id) VALUES %s",
			s.database, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// tableForKind maps a record kind to its raw-record table.
func tableForKind(kind models.RecordKind) (idField, table string, err error) {
	switch kind {
	case models.KindRedditPost:
		return "post_id", "reddit_posts", nil
	case models.KindTikTokVideo:
		return "video_id", "tiktok_videos", nil
	case models.KindPrice:
		return "coin_symbol", "price_records", nil
	default:
		return "", "", fmt.Errorf("unknown record kind: %s", kind)
	}
}

func (s *ClickHouseStorage) StoreRecords(ctx context.Context, kind models.RecordKind, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}
	idField, table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*3)
	now := time.Now().UTC()
	for _, r := range records {
		id, _ := r.String(idField)
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", kind, err)
		}
		values = append(values, "(?, ?, ?)")
		args = append(args, now, id, string(payload))
	}
	q := fmt.Sprintf("INSERT INTO %s.%s (ingested_at, record_id, payload) VALUES %s",
		s.database, table, strings.Join(values, ","))
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseStorage) StoreQuality(ctx context.Context, qm *models.QualityMetrics) error {
	q := fmt.Sprintf(`INSERT INTO %s.quality_log
        (ts, kind, record_count, null_rate, duplicate_rate, outlier_rate, completeness, quality_score, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.database)
	_, err := s.db.ExecContext(ctx, q,
		qm.Timestamp,
		string(qm.DataKind),
		qm.RecordCount,
		qm.NullRate,
		qm.DuplicateRate,
		qm.OutlierRate,
		qm.Completeness,
		qm.QualityScore,
		string(qm.Status),
	)
	return err
}

func (s *ClickHouseStorage) QueryTicks(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PriceTick, error) {
	q := fmt.Sprintf("SELECT symbol, ts, price, volume FROM %s.ticks WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.database)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []*models.PriceTick
	for rows.Next() {
		var t models.PriceTick
		var ts time.Time
		if err := rows.Scan(&t.Symbol, &ts, &t.Price, &t.Volume); err != nil {
			return nil, err
		}
		t.Timestamp = ts.Unix()
		ticks = append(ticks, &t)
	}
	return ticks, rows.Err()
}

func (s *ClickHouseStorage) QueryQuality(ctx context.Context, kind models.RecordKind, from, to time.Time, limit int) ([]*models.QualityMetrics, error) {
	q := fmt.Sprintf(`SELECT ts, kind, record_count, null_rate, duplicate_rate, outlier_rate, completeness, quality_score, status
        FROM %s.quality_log WHERE kind = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?`, s.database)
	rows, err := s.db.QueryContext(ctx, q, string(kind), from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.QualityMetrics
	for rows.Next() {
		var qm models.QualityMetrics
		var k, status string
		if err := rows.Scan(&qm.Timestamp, &k, &qm.RecordCount, &qm.NullRate, &qm.DuplicateRate,
			&qm.OutlierRate, &qm.Completeness, &qm.QualityScore, &status); err != nil {
			return nil, err
		}
		qm.DataKind = models.RecordKind(k)
		qm.Status = models.QualityStatus(status)
		out = append(out, &qm)
	}
	return out, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event string, payload any) error {
	return p.producer.Publish(ctx, p.topic, []byte(event), map[string]interface{}{
		"event":   event,
		"ts":      time.Now().UTC().Format(time.RFC3339),
		"payload": payload,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
