// internal/app/system/timefmt/timefmt.go

// Package timefmt covers the two time helpers the stats views share:
// formatting second counts for display and resolving the start of a
// leaderboard period.
package timefmt

import (
	"fmt"
	"time"
)

// Leaderboard period identifiers.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Duration formats a second count as "2h 5m 30s", dropping leading
// zero units.
func Duration(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	hrs := secs / 3600
	mins := (secs % 3600) / 60
	rem := secs % 60
	if hrs > 0 {
		return fmt.Sprintf("%dh %dm %ds", hrs, mins, rem)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm %ds", mins, rem)
	}
	return fmt.Sprintf("%ds", rem)
}

// PeriodStart returns the UTC start of the given period relative to
// now: midnight today, the most recent Sunday, the first of the month,
// or January 1. Unknown periods return the zero time (all history).
func PeriodStart(period string, now time.Time) time.Time {
	now = now.UTC()
	switch period {
	case PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeekly:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return midnight.AddDate(0, 0, -int(now.Weekday()))
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYearly:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}

// ValidPeriod reports whether period is one of the known identifiers.
func ValidPeriod(period string) bool {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}
