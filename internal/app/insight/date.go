// Package insight implements the activity aggregation and reminder
// eligibility engine. Every function here is a pure computation over the
// arguments it is given: no storage, no wall clock, no shared state. Callers
// pull events and configuration, call in, and persist the results — which
// makes the whole package safe for arbitrary concurrent use.
package insight

import (
	"fmt"
	"time"
)

// DayOf normalizes t to midnight of its calendar day, keeping the location.
// All date comparisons in the engine go through this.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey renders t's calendar day as "2006-01-02".
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a. Each argument's day is taken in its own
// location, so a UTC-midnight date from storage and a local wall clock
// compare correctly.
func DaysBetween(a, b time.Time) int {
	return int(utcDay(b).Sub(utcDay(a)).Hours() / 24)
}

// utcDay pins t's calendar day to UTC midnight, which makes days
// subtractable regardless of the locations the inputs carry.
func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ISOWeekday returns t's weekday with Monday=0 through Sunday=6.
// The engine uses this convention exclusively; adapters translate any
// Sunday-first storage format at the boundary.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ISOWeekKey returns "YYYY-Www" for t's ISO-8601 week.
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekStart returns the Monday beginning t's ISO week.
func WeekStart(t time.Time) time.Time {
	return DayOf(t).AddDate(0, 0, -ISOWeekday(t))
}
