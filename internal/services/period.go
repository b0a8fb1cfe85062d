package services

import "time"

// currentPeriod returns the calendar month containing now, in UTC, as the
// half-open range [start, end).
func currentPeriod(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
