package botdetect

import (
	"regexp"
	"strings"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/stats"
)

// rule is one independent bot signal: a predicate over a record and the fixed
// weight it adds when triggered. Predicates report applies=false when the
// fields they need are absent, which skips the signal instead of penalizing
// incomplete-but-legitimate records.
type rule struct {
	name   string
	weight float64
	match  func(r models.Record, now time.Time) (triggered, applies bool)
}

// Username shapes bots tend to register: trailing long digit runs, short
// handles padded with digits, crypto-hype templates, explicit "bot" prefixes
// and digit-word-digit sandwiches.
var suspiciousUsernamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z]+\d{4,}$`),
	regexp.MustCompile(`^\w{1,3}\d{6,}$`),
	regexp.MustCompile(`^(crypto|moon|rocket|pump)\w+\d+$`),
	regexp.MustCompile(`^bot\w+`),
	regexp.MustCompile(`^\d+\w+\d+$`),
	regexp.MustCompile(`^(happy|lucky|super|mega|cool)[a-z]+\d{2,}$`),
}

func suspiciousUsername(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range suspiciousUsernamePatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// accountAgeDays resolves an account age from either an explicit
// account_age_days field or a created-at timestamp field.
func accountAgeDays(r models.Record, ageField, createdField string, now time.Time) (float64, bool) {
	if age, ok := r.Float(ageField); ok {
		return age, true
	}
	if created, ok := r.Time(createdField); ok {
		return now.Sub(created).Hours() / 24, true
	}
	return 0, false
}

func redditRules() []rule {
	return []rule{
		{
			name:   "new_account",
			weight: 25,
			match: func(r models.Record, now time.Time) (bool, bool) {
				age, ok := accountAgeDays(r, "account_age_days", "author_created_utc", now)
				if !ok {
					return false, false
				}
				return age < 7, true
			},
		},
		{
			name:   "low_karma_old_account",
			weight: 20,
			match: func(r models.Record, now time.Time) (bool, bool) {
				karma, haveKarma := r.Float("author_karma")
				age, haveAge := accountAgeDays(r, "account_age_days", "author_created_utc", now)
				if !haveKarma || !haveAge {
					return false, false
				}
				return karma <= 0 && age > 30, true
			},
		},
		{
			name:   "suspicious_username",
			weight: 20,
			match: func(r models.Record, _ time.Time) (bool, bool) {
				name, ok := r.String("author")
				if !ok || name == "" {
					return false, false
				}
				return suspiciousUsername(name), true
			},
		},
		{
			name:   "high_posting_frequency",
			weight: 20,
			match: func(r models.Record, _ time.Time) (bool, bool) {
				freq, ok := r.Float("posting_frequency")
				if !ok {
					return false, false
				}
				return freq > 10, true
			},
		},
		{
			name:   "uniform_engagement",
			weight: 15,
			match: func(r models.Record, _ time.Time) (bool, bool) {
				scores, ok := floatSlice(r, "author_recent_scores")
				if !ok || len(scores) < 3 {
					return false, false
				}
				_, stddev, err := stats.MeanStdDev(scores)
				if err != nil {
					return false, false
				}
				// Organic engagement varies; a flat score line across posts
				// is the fingerprint of vote rings.
				return stddev < 0.5, true
			},
		},
	}
}

func tiktokRules() []rule {
	return []rule{
		{
			name:   "low_follower_ratio",
			weight: 25,
			match: func(r models.Record, _ time.Time) (bool, bool) {
				followers, ok1 := r.Float("followers")
				following, ok2 := r.Float("following")
				if !ok1 || !ok2 || following <= 0 {
					return false, false
				}
				return following > 500 && followers/following < 0.05, true
			},
		},
		{
			name:   "low_engagement_rate",
			weight: 20,
			match: func(r models.Record, _ time.Time) (bool, bool) {
				views, okV := r.Float("views")
				likes, okL := r.Float("likes")
				if !okV || !okL || views <= 0 {
					return false, false
				}
				comments, _ := r.Float("comments")
				return views > 10000 && (likes+comments)/views < 0.001, true
			},
		},
		{
			name:   "suspicious_username",
			weight: 20,
			match: func(r models.Record, _ time.Time) (bool, bool) {
				name, ok := r.String("username")
				if !ok || name == "" {
					return false, false
				}
				return suspiciousUsername(name), true
			},
		},
		{
			name:   "round_number_metrics",
			weight: 15,
			match: func(r models.Record, _ time.Time) (bool, bool) {
				var present, round int
				for _, f := range []string{"views", "likes", "followers", "following"} {
					v, ok := r.Float(f)
					if !ok || v <= 0 {
						continue
					}
					present++
					if int64(v)%1000 == 0 && v == float64(int64(v)) {
						round++
					}
				}
				if present == 0 {
					return false, false
				}
				// Three round thousands across the metric set is too tidy to
				// be organic.
				return round >= 3, true
			},
		},
		{
			name:   "posting_farm",
			weight: 20,
			match: func(r models.Record, now time.Time) (bool, bool) {
				age, okAge := accountAgeDays(r, "account_age_days", "created_at", now)
				videos, okVid := r.Float("video_count")
				if !okAge || !okVid {
					return false, false
				}
				if age < 1 {
					age = 1
				}
				return videos/age > 10, true
			},
		},
	}
}

// floatSlice pulls a numeric slice out of a record field; JSON decoding
// yields []any of float64.
func floatSlice(r models.Record, field string) ([]float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	switch vs := v.(type) {
	case []float64:
		return vs, true
	case []any:
		out := make([]float64, 0, len(vs))
		for _, e := range vs {
			switch n := e.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}
