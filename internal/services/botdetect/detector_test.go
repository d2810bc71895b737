package botdetect

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinSentry/internal/domain/models"
)

func fixedDetector(cfg Config) *Detector {
	d := NewDetector(cfg)
	d.now = func() time.Time {
		return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	return d
}

func TestAnalyzeRedditNoSignalFields(t *testing.T) {
	d := fixedDetector(DefaultConfig())
	a := d.AnalyzeReddit(models.Record{"post_id": "x", "title": "gm"})
	assert.Equal(t, 0.0, a.BotScore)
	assert.False(t, a.IsBot)
	assert.Empty(t, a.Flags)
}

func TestAnalyzeRedditSystemAccount(t *testing.T) {
	d := fixedDetector(DefaultConfig())
	a := d.AnalyzeReddit(models.Record{"author": "AutoModerator", "account_age_days": 1.0})
	assert.Equal(t, 0.0, a.BotScore)
	assert.Equal(t, []string{"system_account"}, a.Flags)
}

func TestAnalyzeRedditSignalWeights(t *testing.T) {
	d := fixedDetector(DefaultConfig())

	cases := []struct {
		name   string
		rec    models.Record
		weight float64
		flag   string
	}{
		{"new account", models.Record{"author": "trusted_user", "account_age_days": 3.0}, 25, "new_account"},
		{"low karma old account", models.Record{"author": "trusted_user", "account_age_days": 90.0, "author_karma": -4.0}, 20, "low_karma_old_account"},
		{"suspicious username", models.Record{"author": "moonboy12345"}, 20, "suspicious_username"},
		{"high posting frequency", models.Record{"author": "trusted_user", "posting_frequency": 14.0}, 20, "high_posting_frequency"},
		{"uniform engagement", models.Record{"author": "trusted_user", "author_recent_scores": []float64{3, 3, 3, 3, 3}}, 15, "uniform_engagement"},
	}
	for _, tc := range cases {
		a := d.AnalyzeReddit(tc.rec)
		assert.Equal(t, tc.weight, a.BotScore, tc.name)
		assert.Contains(t, a.Flags, tc.flag, tc.name)
		assert.False(t, a.IsBot, tc.name)
	}
}

func TestAnalyzeRedditAdditivity(t *testing.T) {
	d := fixedDetector(DefaultConfig())

	rec := models.Record{"author": "legit_trader"}
	prev := d.AnalyzeReddit(rec).BotScore

	// Each added signal may only raise the score.
	rec["account_age_days"] = 2.0
	s := d.AnalyzeReddit(rec).BotScore
	assert.GreaterOrEqual(t, s, prev)
	prev = s

	rec["posting_frequency"] = 25.0
	s = d.AnalyzeReddit(rec).BotScore
	assert.GreaterOrEqual(t, s, prev)
	prev = s

	rec["author"] = "pumpcoin99"
	s = d.AnalyzeReddit(rec).BotScore
	assert.GreaterOrEqual(t, s, prev)

	a := d.AnalyzeReddit(rec)
	assert.Equal(t, 65.0, a.BotScore)
	assert.True(t, a.IsBot)
}

func TestAnalyzeRedditCreatedUTCFallback(t *testing.T) {
	d := fixedDetector(DefaultConfig())
	created := d.now().Add(-48 * time.Hour).Unix()
	a := d.AnalyzeReddit(models.Record{"author": "some_user", "author_created_utc": created})
	assert.Contains(t, a.Flags, "new_account")
}

func TestAnalyzeTikTokSignals(t *testing.T) {
	d := fixedDetector(DefaultConfig())

	a := d.AnalyzeTikTok(models.Record{
		"username":  "dancequeen",
		"followers": 10.0,
		"following": 2000.0,
	})
	assert.Equal(t, 25.0, a.BotScore)
	assert.Contains(t, a.Flags, "low_follower_ratio")

	a = d.AnalyzeTikTok(models.Record{
		"username": "dancequeen",
		"views":    50000.0,
		"likes":    10.0,
		"comments": 5.0,
	})
	assert.Equal(t, 20.0, a.BotScore)
	assert.Contains(t, a.Flags, "low_engagement_rate")

	a = d.AnalyzeTikTok(models.Record{
		"username":  "dancequeen",
		"views":     20000.0,
		"likes":     5000.0,
		"followers": 1000.0,
		"following": 3000.0,
	})
	assert.Contains(t, a.Flags, "round_number_metrics")

	a = d.AnalyzeTikTok(models.Record{
		"username":         "dancequeen",
		"account_age_days": 5.0,
		"video_count":      200.0,
	})
	assert.Equal(t, 20.0, a.BotScore)
	assert.Contains(t, a.Flags, "posting_farm")
}

func TestScoreClamp(t *testing.T) {
	d := fixedDetector(DefaultConfig())
	// All five TikTok signals: 25+20+20+15+20 = 100, clamp holds at the cap.
	a := d.AnalyzeTikTok(models.Record{
		"username":         "bot4account7",
		"followers":        1000.0,
		"following":        100000.0,
		"views":            1000000.0,
		"likes":            100.0,
		"account_age_days": 2.0,
		"video_count":      500.0,
	})
	assert.LessOrEqual(t, a.BotScore, 100.0)
	assert.True(t, a.IsBot)
}

func TestFilterRedditPartition(t *testing.T) {
	d := fixedDetector(DefaultConfig())
	batch := []models.Record{
		{"author": "alice_writes", "post_id": "a"},
		{"author": "pumpcoin99", "account_age_days": 2.0, "posting_frequency": 20.0, "post_id": "b"},
		{"author": "bob_hodls", "post_id": "c"},
		{"author": "xx1234567", "account_age_days": 1.0, "posting_frequency": 12.0, "post_id": "d"},
		{"author": "carol_dca", "post_id": "e"},
	}
	clean, flagged, fs := d.FilterReddit(batch)

	assert.Equal(t, len(batch), len(clean)+len(flagged))
	assert.Equal(t, 5, fs.Total)
	assert.Equal(t, len(flagged), fs.BotCount)

	// Order preserved within partitions.
	ids := func(rs []models.Record) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			id, _ := r.String("post_id")
			out = append(out, id)
		}
		return out
	}
	assert.Equal(t, []string{"a", "c", "e"}, ids(clean))
	assert.Equal(t, []string{"b", "d"}, ids(flagged))
	assert.InDelta(t, 40.0, fs.BotPercentage, 1e-9)
}

func TestFilterDisabledPassThrough(t *testing.T) {
	d := fixedDetector(Config{Enabled: false, Threshold: 50})
	batch := []models.Record{
		{"author": "pumpcoin99", "account_age_days": 1.0, "posting_frequency": 99.0},
	}
	clean, flagged, fs := d.FilterReddit(batch)
	assert.Equal(t, batch, clean)
	assert.Empty(t, flagged)
	assert.Equal(t, 0.0, fs.BotPercentage)
	assert.Equal(t, 0, fs.BotCount)
}

func TestFilterThresholdOverride(t *testing.T) {
	d := fixedDetector(Config{Enabled: true, Threshold: 20})
	a := d.AnalyzeReddit(models.Record{"author": "moonboy12345"})
	assert.True(t, a.IsBot) // 20 >= 20 with the lowered threshold
}

func TestRiskStatsBuckets(t *testing.T) {
	d := fixedDetector(DefaultConfig())
	batch := make([]models.Record, 0, 6)
	for i := 0; i < 3; i++ {
		batch = append(batch, models.Record{"author": fmt.Sprintf("normal_user_%d", i)})
	}
	batch = append(batch,
		models.Record{"author": "pumpcoin99", "account_age_days": 2.0, "posting_frequency": 50.0, "author_recent_scores": []float64{1, 1, 1}}, // 80
		models.Record{"author": "moonboy12345", "account_age_days": 3.0, "posting_frequency": 2.0}, // 45 -> low
		models.Record{"author": "xx1234567", "account_age_days": 2.0, "posting_frequency": 12.0},   // 65 -> medium
	)
	rs := d.RiskStats(batch, "reddit")
	assert.Equal(t, 6, rs.Total)
	assert.Equal(t, 1, rs.HighRisk)
	assert.Equal(t, 1, rs.MediumRisk)
	assert.Equal(t, 4, rs.LowRisk)
}

func TestFilterTikTokPartitionSums(t *testing.T) {
	d := fixedDetector(DefaultConfig())
	batch := []models.Record{
		{"username": "realcreator", "video_id": "1"},
		{"username": "bot7farm1", "followers": 5.0, "following": 10000.0, "views": 500000.0, "likes": 50.0, "video_id": "2"},
	}
	clean, flagged, fs := d.FilterTikTok(batch)
	require.Equal(t, 2, fs.Total)
	assert.Len(t, clean, 1)
	assert.Len(t, flagged, 1)
}
