package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/services/volume"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryStore struct {
	points map[string][]models.VolumePoint
	err    error
}

func (f *fakeHistoryStore) GetVolumeHistory(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.VolumePoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.points[symbol], nil
}

func (f *fakeHistoryStore) GetLatestNPoints(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.VolumePoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	pts := f.points[symbol]
	if len(pts) > n {
		pts = pts[len(pts)-n:]
	}
	return pts, nil
}

func hourlyPoints(start time.Time, n int) []models.VolumePoint {
	pts := make([]models.VolumePoint, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, models.VolumePoint{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Volume:    1000 + float64(i),
			Price:     64000,
		})
	}
	return pts
}

func TestSeedLoadsHistory(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	hs := &fakeHistoryStore{points: map[string][]models.VolumePoint{
		"BTCUSDT": hourlyPoints(start, 48),
		"ETHUSDT": hourlyPoints(start, 12),
	}}
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	s := NewSeriesSeeder(hs, analyzer)

	err := s.Seed(context.Background(), []string{"BTCUSDT", "ETHUSDT"}, 24, domrepo.TF1h)
	require.NoError(t, err)

	assert.Equal(t, 24, analyzer.Len("BTCUSDT"), "capped at n newest points")
	assert.Equal(t, 12, analyzer.Len("ETHUSDT"))
}

func TestSeedZeroPointsNoop(t *testing.T) {
	hs := &fakeHistoryStore{err: errors.New("should not be called")}
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	s := NewSeriesSeeder(hs, analyzer)

	require.NoError(t, s.Seed(context.Background(), []string{"BTCUSDT"}, 0, domrepo.TF1h))
	assert.Equal(t, 0, analyzer.Len("BTCUSDT"))
}

func TestSeedAllSymbolsFailing(t *testing.T) {
	hs := &fakeHistoryStore{err: errors.New("clickhouse down")}
	analyzer := volume.NewAnalyzer(volume.DefaultConfig())
	s := NewSeriesSeeder(hs, analyzer)

	err := s.Seed(context.Background(), []string{"BTCUSDT", "ETHUSDT"}, 24, domrepo.TF1h)
	assert.Error(t, err)
}
