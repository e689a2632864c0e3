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

func TestParseTradingDayFormats(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"01-Jan-2025", "01-01-2025", "2025-01-01", " 01-Jan-2025 "} {
		got, ok := ParseTradingDay(s)
		if !ok {
			t.Fatalf("expected ok for %q", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%q parsed to %v, want %v", s, got, want)
		}
	}
	if _, ok := ParseTradingDay("not-a-date"); ok {
		t.Fatalf("expected failure")
	}
}

func TestIsMarketHours(t *testing.T) {
	open := time.Date(2025, 7, 10, 11, 30, 0, 0, ist)
	if !IsMarketHours(open) {
		t.Fatalf("11:30 IST should be market hours")
	}
	closed := time.Date(2025, 7, 10, 17, 0, 0, 0, ist)
	if IsMarketHours(closed) {
		t.Fatalf("17:00 IST should be closed")
	}
	utc := time.Date(2025, 7, 10, 6, 0, 0, 0, time.UTC) // 11:30 IST
	if !IsMarketHours(utc) {
		t.Fatalf("06:00 UTC is 11:30 IST, should be market hours")
	}
}
