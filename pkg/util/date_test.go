package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestAlignFromTo(t *testing.T) {
    from := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    to := time.Date(2024, 10, 10, 12, 45, 59, 0, time.UTC)

    f, tt := AlignFromTo(from, to, "1m")
    if f.Second() != 0 || tt.Second() != 0 {
        t.Fatalf("1m should clear seconds: %v %v", f, tt)
    }

    f, tt = AlignFromTo(from, to, "1h")
    if f.Minute() != 0 || tt.Minute() != 0 {
        t.Fatalf("1h should clear minutes: %v %v", f, tt)
    }

    f, _ = AlignFromTo(from, to, "1d")
    if f.Hour() != 0 {
        t.Fatalf("1d should clear hours: %v", f)
    }

    // unknown timeframe falls back to hourly
    f, _ = AlignFromTo(from, to, "5m")
    if f.Minute() != 0 {
        t.Fatalf("fallback should clear minutes: %v", f)
    }
}