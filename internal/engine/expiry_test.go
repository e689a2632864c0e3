package engine

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextExpiryThursdayBeforeCutover(t *testing.T) {
	// Monday 2025-06-02 -> Thursday 2025-06-05.
	got := NextExpiry(date(2025, time.June, 2))
	if !got.Equal(date(2025, time.June, 5)) {
		t.Fatalf("next expiry = %v, want 2025-06-05", got)
	}
	// The expiry day itself maps to itself.
	got = NextExpiry(date(2025, time.June, 5))
	if !got.Equal(date(2025, time.June, 5)) {
		t.Fatalf("expiry day must map to itself, got %v", got)
	}
}

func TestNextExpiryTuesdayAfterCutover(t *testing.T) {
	// Wednesday 2025-09-03 -> Tuesday 2025-09-09.
	got := NextExpiry(date(2025, time.September, 3))
	if !got.Equal(date(2025, time.September, 9)) {
		t.Fatalf("next expiry = %v, want 2025-09-09", got)
	}
	if got.Weekday() != time.Tuesday {
		t.Fatalf("post-cutover expiry weekday = %v, want Tuesday", got.Weekday())
	}
}

func TestNextExpiryStraddlingCutover(t *testing.T) {
	// Friday 2025-08-29 is pre-cutover, but its Thursday candidate
	// (2025-09-04) lands past the cutover, so the Tuesday rule applies:
	// the first post-cutover Tuesday, 2025-09-02, not the one after it.
	got := NextExpiry(date(2025, time.August, 29))
	if !got.Equal(date(2025, time.September, 2)) {
		t.Fatalf("cutover-straddling expiry = %v, want 2025-09-02", got)
	}
	// The cutover day itself is a Monday and maps to the next day.
	got = NextExpiry(date(2025, time.September, 1))
	if !got.Equal(date(2025, time.September, 2)) {
		t.Fatalf("cutover-day expiry = %v, want 2025-09-02", got)
	}
}

func TestResidualDTE(t *testing.T) {
	cases := []struct {
		day  time.Time
		want int
	}{
		{date(2025, time.June, 5), 0},      // Thursday, expiry day
		{date(2025, time.June, 4), 1},      // Wednesday
		{date(2025, time.June, 2), 3},      // Monday
		{date(2025, time.June, 6), 6},      // Friday after expiry
		{date(2025, time.August, 29), 4},   // Friday straddling the cutover
		{date(2025, time.September, 9), 0}, // Tuesday, post-cutover expiry day
		{date(2025, time.September, 8), 1},
	}
	for _, c := range cases {
		if got := ResidualDTE(c.day); got != c.want {
			t.Fatalf("ResidualDTE(%v) = %d, want %d", c.day, got, c.want)
		}
	}
}
