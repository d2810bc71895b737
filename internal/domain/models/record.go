package models

import (
	"time"

	"CoinSentry/pkg/util"
)

// Record is a raw collected item: a plain mapping of field name to value as
// produced by the fetch/scrape layer (typically decoded JSON). The engine
// never mutates a Record; it only derives scores from it.
type Record map[string]any

// Has reports whether the field is present and non-null. Empty strings count
// as null to match what scrapers emit for missing data.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}

// String returns the field as a string.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns the field as a float64, converting from the numeric types
// JSON decoding and ClickHouse scans produce.
func (r Record) Float(field string) (float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Int returns the field as an int64.
func (r Record) Int(field string) (int64, bool) {
	f, ok := r.Float(field)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Time parses the field as a timestamp: time.Time, RFC3339 string, or unix
// seconds.
func (r Record) Time(field string) (time.Time, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return util.ParseTime(t)
	default:
		if sec, ok := r.Int(field); ok && sec > 0 {
			return time.Unix(sec, 0), true
		}
		return time.Time{}, false
	}
}

// RecordKind identifies which collection produced a batch and therefore which
// field contract applies to it.
type RecordKind string

const (
	KindPrice       RecordKind = "price"
	KindRedditPost  RecordKind = "reddit_post"
	KindTikTokVideo RecordKind = "tiktok_video"
)

// Valid reports whether the kind is one the engine knows how to score.
func (k RecordKind) Valid() bool {
	switch k {
	case KindPrice, KindRedditPost, KindTikTokVideo:
		return true
	default:
		return false
	}
}
