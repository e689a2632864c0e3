package engine

import "time"

// The exchange moved the index weekly expiry from Thursday to Tuesday
// starting with this calendar date.
var expiryCutover = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

// ExpiryWeekday returns the weekly expiry weekday in effect on a given day.
func ExpiryWeekday(day time.Time) time.Weekday {
	if day.Before(expiryCutover) {
		return time.Thursday
	}
	return time.Tuesday
}

// NextExpiry returns the next weekly expiry date on or after day: the
// first date whose weekday matches the convention in force on that date.
// The expiry day itself counts as zero days remaining.
func NextExpiry(day time.Time) time.Time {
	exp := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	for exp.Weekday() != ExpiryWeekday(exp) {
		exp = exp.AddDate(0, 0, 1)
	}
	return exp
}

// ResidualDTE returns the calendar days from day to its next weekly expiry.
func ResidualDTE(day time.Time) int {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return int(NextExpiry(day).Sub(day).Hours() / 24)
}
