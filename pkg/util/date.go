package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// tradingDayFormats are the date layouts seen in NSE bhavcopy and index CSVs.
var tradingDayFormats = []string{
	"02-Jan-2006",
	"02-01-2006",
	"2006-01-02",
}

// ParseTradingDay parses an exchange CSV date in any of the common NSE
// formats. The result is a UTC midnight date.
func ParseTradingDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range tradingDayFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ist is fixed at +05:30; India has no DST.
var ist = time.FixedZone("IST", 5*3600+30*60)

// NowIST returns the current wall-clock time in Indian Standard Time.
func NowIST() time.Time {
	return time.Now().In(ist)
}

// InIST converts a time to IST.
func InIST(t time.Time) time.Time {
	return t.In(ist)
}

// IsMarketHours reports whether the given time falls inside NSE trading
// hours, using the hour-granularity check the dashboard displays.
func IsMarketHours(t time.Time) bool {
	h := t.In(ist).Hour()
	return h >= 9 && h < 16
}
