package common

import "time"

// NormalizeToUTCMidnight truncates t to 00:00:00 UTC of its calendar day.
// Forecast rows are keyed by this value so that one row represents one day
// regardless of the time zone the fetch ran in.
func NormalizeToUTCMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
