package quality

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinSentry/internal/domain/models"
)

func redditRecord(id string, score float64) models.Record {
	return models.Record{
		"post_id":     id,
		"title":       "to the moon",
		"author":      "holder_" + id,
		"score":       score,
		"created_utc": time.Now().Unix(),
		"subreddit":   "CryptoMoonShots",
	}
}

func cleanRedditBatch(n int) []models.Record {
	batch := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, redditRecord(fmt.Sprintf("p%03d", i), float64(10+i%7)))
	}
	return batch
}

func TestAssessEmptyBatchFails(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	qm := m.Assess(nil, models.KindRedditPost)
	assert.Equal(t, 0.0, qm.QualityScore)
	assert.Equal(t, models.StatusFailed, qm.Status)
	assert.Equal(t, 0, qm.RecordCount)
}

func TestAssessCleanBatchIsExcellent(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	qm := m.Assess(cleanRedditBatch(20), models.KindRedditPost)
	assert.Equal(t, 100.0, qm.QualityScore)
	assert.Equal(t, models.StatusExcellent, qm.Status)
	assert.Equal(t, 0.0, qm.NullRate)
	assert.Equal(t, 0.0, qm.DuplicateRate)
	assert.Equal(t, 0.0, qm.OutlierRate)
}

func TestAssessNullRate(t *testing.T) {
	batch := cleanRedditBatch(10)
	delete(batch[0], "author")
	batch[1]["title"] = ""
	batch[2]["post_id"] = nil

	m := NewMonitor(DefaultConfig())
	qm := m.Assess(batch, models.KindRedditPost)
	assert.InDelta(t, 0.3, qm.NullRate, 1e-9)
	// score = 100 * (1 - 0.4*0.3) = 88
	assert.InDelta(t, 88.0, qm.QualityScore, 1e-9)
	assert.Equal(t, models.StatusGood, qm.Status)
}

func TestAssessDuplicateRate(t *testing.T) {
	batch := cleanRedditBatch(10)
	batch[8]["post_id"] = "p000"
	batch[9]["post_id"] = "p000"

	m := NewMonitor(DefaultConfig())
	qm := m.Assess(batch, models.KindRedditPost)
	assert.InDelta(t, 0.2, qm.DuplicateRate, 1e-9)
}

func TestAssessOutlierRate(t *testing.T) {
	batch := cleanRedditBatch(20)
	batch[5]["score"] = 100000.0

	m := NewMonitor(DefaultConfig())
	qm := m.Assess(batch, models.KindRedditPost)
	assert.InDelta(t, 0.05, qm.OutlierRate, 1e-9)
}

func TestAssessSmallBatchSkipsOutliers(t *testing.T) {
	// Three values for the numeric field: below the IQR minimum, so the field
	// is skipped rather than penalized.
	batch := cleanRedditBatch(3)
	batch[0]["score"] = 99999.0

	m := NewMonitor(DefaultConfig())
	qm := m.Assess(batch, models.KindRedditPost)
	assert.Equal(t, 0.0, qm.OutlierRate)
	assert.Equal(t, models.StatusExcellent, qm.Status)
}

func TestAssessPriceNaturalKey(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(coin string, at time.Time) models.Record {
		return models.Record{
			"coin_symbol": coin,
			"timestamp":   at.Format(time.RFC3339),
			"price_usd":   0.000123,
		}
	}
	batch := []models.Record{
		mk("DOGE", ts),
		mk("DOGE", ts), // same coin+timestamp: duplicate
		mk("DOGE", ts.Add(time.Minute)),
		mk("PEPE", ts),
	}
	m := NewMonitor(DefaultConfig())
	qm := m.Assess(batch, models.KindPrice)
	assert.InDelta(t, 0.25, qm.DuplicateRate, 1e-9)
}

func TestAssessCompletenessDiagnostic(t *testing.T) {
	batch := cleanRedditBatch(10)
	for i := 0; i < 5; i++ {
		delete(batch[i], "subreddit")
	}
	m := NewMonitor(DefaultConfig())
	qm := m.Assess(batch, models.KindRedditPost)
	require.NotNil(t, qm.FieldCompleteness)
	assert.InDelta(t, 0.5, qm.FieldCompleteness["subreddit"], 1e-9)
	// Optional fields never move the score.
	assert.Equal(t, 100.0, qm.QualityScore)
}

func TestScoreBoundsAndStatusConsistency(t *testing.T) {
	// Property: for arbitrary defect mixes the score stays in [0,100] and the
	// status matches the fixed bands.
	rng := rand.New(rand.NewSource(7))
	m := NewMonitor(DefaultConfig())
	for trial := 0; trial < 200; trial++ {
		n := 8 + rng.Intn(40)
		batch := cleanRedditBatch(n)
		for i := range batch {
			switch {
			case rng.Float64() < 0.3:
				delete(batch[i], "author")
			case rng.Float64() < 0.3:
				batch[i]["post_id"] = "dup"
			case rng.Float64() < 0.2:
				batch[i]["score"] = 1e9
			}
		}
		qm := m.Assess(batch, models.KindRedditPost)
		require.GreaterOrEqual(t, qm.QualityScore, 0.0)
		require.LessOrEqual(t, qm.QualityScore, 100.0)
		require.Equal(t, models.StatusForScore(qm.QualityScore), qm.Status)
	}
}

func TestStatusForScoreThresholds(t *testing.T) {
	cases := map[float64]models.QualityStatus{
		100: models.StatusExcellent,
		90:  models.StatusExcellent,
		89:  models.StatusGood,
		75:  models.StatusGood,
		74:  models.StatusAcceptable,
		50:  models.StatusAcceptable,
		49:  models.StatusPoor,
		25:  models.StatusPoor,
		24:  models.StatusFailed,
		0:   models.StatusFailed,
	}
	for score, want := range cases {
		assert.Equal(t, want, models.StatusForScore(score), "score %v", score)
	}
}

func TestAssessUnknownKind(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	qm := m.Assess([]models.Record{{"x": 1}}, models.RecordKind("telegram"))
	assert.Equal(t, 1.0, qm.NullRate)
	assert.Equal(t, models.StatusForScore(qm.QualityScore), qm.Status)
}
