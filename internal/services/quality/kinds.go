package quality

import (
	"fmt"
	"strings"

	"CoinSentry/internal/domain/models"
)

// kindSpec is the versioned field contract for one record kind: which fields
// the fetch layer must supply, which are nice to have, how records are keyed
// for duplicate detection, and which numeric fields are quality-sensitive
// enough to scan for outliers.
type kindSpec struct {
	required   []string
	optional   []string
	numeric    []string
	naturalKey func(models.Record) (string, bool)
}

var kindSpecs = map[models.RecordKind]kindSpec{
	models.KindPrice: {
		required: []string{"coin_symbol", "timestamp", "price_usd"},
		optional: []string{"market_cap", "volume_24h"},
		numeric:  []string{"price_usd", "volume_24h"},
		naturalKey: func(r models.Record) (string, bool) {
			coin, ok1 := r.String("coin_symbol")
			ts, ok2 := r.Time("timestamp")
			if !ok1 || !ok2 {
				return "", false
			}
			return fmt.Sprintf("%s|%d", strings.ToUpper(coin), ts.Unix()), true
		},
	},
	models.KindRedditPost: {
		required: []string{"post_id", "title", "author", "score", "created_utc"},
		optional: []string{"subreddit", "num_comments", "upvote_ratio"},
		numeric:  []string{"score"},
		naturalKey: func(r models.Record) (string, bool) {
			return r.String("post_id")
		},
	},
	models.KindTikTokVideo: {
		required: []string{"video_id", "username", "views"},
		optional: []string{"caption", "likes", "comments", "followers", "following"},
		numeric:  []string{"views"},
		naturalKey: func(r models.Record) (string, bool) {
			return r.String("video_id")
		},
	},
}

// SpecFor exposes the required-field list for a kind so callers can report
// contract violations precisely.
func SpecFor(kind models.RecordKind) (required []string, ok bool) {
	s, ok := kindSpecs[kind]
	if !ok {
		return nil, false
	}
	return s.required, true
}
