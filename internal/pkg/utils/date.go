package utils

import "time"

// MonthRange returns the first and last calendar dates of a month at UTC midnight.
func MonthRange(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// MonthAnchor is the 15th of the month, used to pick the shift and
// compensation that apply to the whole month.
func MonthAnchor(month, year int) time.Time {
	return time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
