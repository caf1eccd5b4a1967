package util

import (
	"strconv"
	"time"
)

// daysPerYear averages leap years into a lookback window.
const daysPerYear = 365.25

// LookbackStart returns now minus the given number of average-length years.
func LookbackStart(now time.Time, years int) time.Time {
	d := time.Duration(float64(years) * daysPerYear * float64(24*time.Hour))
	return now.Add(-d)
}

// ParseTime accepts a calendar date (2006-01-02), RFC3339 or unix seconds.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// FormatDate renders t as a calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
