// Package botdetect assigns bot-likelihood scores to social-media records
// using additive per-platform heuristic signals, and partitions batches into
// clean and flagged subsets. The weights are empirically chosen starting
// points, exposed through configuration rather than hard-coded intent.
package botdetect

import (
	"sort"
	"time"

	"CoinSentry/internal/domain/models"
	applogger "CoinSentry/pkg/logger"
)

// Config holds the detector's tunables.
type Config struct {
	// Enabled false turns filtering into a pass-through.
	Enabled bool `yaml:"enabled" default:"true"`
	// Threshold is the bot classification cutoff on the 0-100 score.
	Threshold float64 `yaml:"threshold" default:"50"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{Enabled: true, Threshold: 50}
}

// Reddit accounts that legitimately trip heuristics and are always scored 0.
var systemAccounts = map[string]bool{
	"[deleted]":     true,
	"AutoModerator": true,
}

// Detector scores individual social records and filters batches. Stateless
// apart from configuration; safe for concurrent use.
type Detector struct {
	cfg    Config
	reddit []rule
	tiktok []rule
	now    func() time.Time
	l      *applogger.Logger
}

// NewDetector creates a bot detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 50
	}
	return &Detector{
		cfg:    cfg,
		reddit: redditRules(),
		tiktok: tiktokRules(),
		now:    time.Now,
	}
}

// SetLogger injects a structured logger for flag-rate reporting.
func (d *Detector) SetLogger(l *applogger.Logger) { d.l = l }

// AnalyzeReddit scores one Reddit post/author record.
func (d *Detector) AnalyzeReddit(r models.Record) models.BotAssessment {
	id, _ := r.String("author")
	if systemAccounts[id] {
		return models.BotAssessment{SubjectID: id, Flags: []string{"system_account"}}
	}
	return d.score(id, r, d.reddit)
}

// AnalyzeTikTok scores one TikTok video/account record.
func (d *Detector) AnalyzeTikTok(r models.Record) models.BotAssessment {
	id, _ := r.String("username")
	return d.score(id, r, d.tiktok)
}

func (d *Detector) score(id string, r models.Record, rules []rule) models.BotAssessment {
	now := d.now().UTC()
	var score float64
	var flags []string
	for _, rl := range rules {
		triggered, applies := rl.match(r, now)
		if !applies || !triggered {
			continue
		}
		score += rl.weight
		flags = append(flags, rl.name)
	}
	if score > 100 {
		score = 100
	}
	return models.BotAssessment{
		SubjectID: id,
		BotScore:  score,
		IsBot:     score >= d.cfg.Threshold,
		Flags:     flags,
	}
}

// FilterReddit partitions a Reddit batch into clean and flagged subsets,
// preserving original order within each. With detection disabled it is a
// pass-through.
func (d *Detector) FilterReddit(records []models.Record) (clean, flagged []models.Record, stats models.BotFilterStats) {
	return d.filter(records, d.AnalyzeReddit, "reddit")
}

// FilterTikTok is the TikTok equivalent of FilterReddit.
func (d *Detector) FilterTikTok(records []models.Record) (clean, flagged []models.Record, stats models.BotFilterStats) {
	return d.filter(records, d.AnalyzeTikTok, "tiktok")
}

func (d *Detector) filter(records []models.Record, analyze func(models.Record) models.BotAssessment, platform string) (clean, flagged []models.Record, fs models.BotFilterStats) {
	fs.Total = len(records)
	if !d.cfg.Enabled {
		return records, []models.Record{}, fs
	}

	clean = make([]models.Record, 0, len(records))
	flagged = make([]models.Record, 0)
	flagCounts := map[string]int{}
	var scoreSum float64
	for _, r := range records {
		a := analyze(r)
		scoreSum += a.BotScore
		for _, f := range a.Flags {
			flagCounts[f]++
		}
		if a.IsBot {
			flagged = append(flagged, r)
		} else {
			clean = append(clean, r)
		}
	}

	fs.BotCount = len(flagged)
	if fs.Total > 0 {
		fs.BotPercentage = float64(fs.BotCount) / float64(fs.Total) * 100
		fs.AvgBotScore = scoreSum / float64(fs.Total)
	}
	fs.CommonFlags = topFlags(flagCounts, 5)

	if d.l != nil && fs.BotCount > 0 {
		d.l.Info("bot filter pass",
			applogger.String("platform", platform),
			applogger.Int("total", fs.Total),
			applogger.Int("flagged", fs.BotCount),
			applogger.Any("bot_percentage", fs.BotPercentage),
		)
	}
	return clean, flagged, fs
}

// RiskStats buckets a batch by risk band without filtering it.
func (d *Detector) RiskStats(records []models.Record, platform string) models.BotRiskStats {
	analyze := d.AnalyzeReddit
	if platform == "tiktok" {
		analyze = d.AnalyzeTikTok
	}
	rs := models.BotRiskStats{Total: len(records)}
	flagCounts := map[string]int{}
	var sum float64
	for _, r := range records {
		a := analyze(r)
		sum += a.BotScore
		for _, f := range a.Flags {
			flagCounts[f]++
		}
		switch {
		case a.BotScore >= 70:
			rs.HighRisk++
		case a.BotScore >= 50:
			rs.MediumRisk++
		default:
			rs.LowRisk++
		}
	}
	if rs.Total > 0 {
		rs.AvgBotScore = sum / float64(rs.Total)
	}
	rs.CommonFlags = topFlags(flagCounts, 5)
	return rs
}

// topFlags keeps the n most frequent flags; deterministic order by count
// then name so stored stats are stable.
func topFlags(counts map[string]int, n int) map[string]int {
	if len(counts) <= n {
		if len(counts) == 0 {
			return nil
		}
		return counts
	}
	type kv struct {
		k string
		v int
	}
	all := make([]kv, 0, len(counts))
	for k, v := range counts {
		all = append(all, kv{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].v != all[j].v {
			return all[i].v > all[j].v
		}
		return all[i].k < all[j].k
	})
	out := make(map[string]int, n)
	for _, e := range all[:n] {
		out[e.k] = e.v
	}
	return out
}
