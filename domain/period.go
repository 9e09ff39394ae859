package domain

import (
	"strings"
	"time"
)

// Period selects the completion window counted by the leaderboard.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all-time"
)

// Periods lists every recognized period in display order.
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}

// ParsePeriod maps a selector to a Period. Unrecognized values mean all-time.
func ParsePeriod(value string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(value))) {
	case PeriodDaily:
		return PeriodDaily
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	default:
		return PeriodAllTime
	}
}

// Since returns the inclusive lower bound of the window ending at now.
// The zero time means unbounded.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodDaily:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return monthBefore(now)
	default:
		return time.Time{}
	}
}

// Contains reports whether a completion at completedAt falls in the window
// ending at now. Daily compares calendar days in now's location.
func (p Period) Contains(completedAt, now time.Time) bool {
	switch p {
	case PeriodDaily:
		cy, cm, cd := completedAt.In(now.Location()).Date()
		ny, nm, nd := now.Date()
		return cy == ny && cm == nm && cd == nd
	case PeriodWeekly, PeriodMonthly:
		return !completedAt.Before(p.Since(now))
	default:
		return true
	}
}

// monthBefore subtracts one calendar month, clamping the day to the last day
// of the target month (Mar 31 -> Feb 28 or 29).
func monthBefore(now time.Time) time.Time {
	y, m, d := now.Date()
	firstOfTarget := time.Date(y, m-1, 1, 0, 0, 0, 0, now.Location())
	last := daysIn(firstOfTarget.Year(), firstOfTarget.Month(), now.Location())
	if d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
