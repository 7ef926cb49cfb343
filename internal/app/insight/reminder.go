package insight

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// Reminder eligibility walks a per-(user, kind) cycle of
// Idle → Eligible → Fired → Idle, resetting at local midnight. The engine
// only computes the Eligible verdict; the caller owns the Fired log. If the
// caller fails to record a firing, the engine re-offers Eligible on the next
// poll — at-least-once decisions, made effectively at-most-once by the
// caller's atomic check-and-insert on the dedup key.

// DefaultDailyTolerance is how far from the configured wall-clock time a
// daily reminder still fires.
const DefaultDailyTolerance = 5 * time.Minute

// DecideDaily evaluates the scheduled daily reminder. lastFired is the most
// recent fired-log date for this (user, daily) pair, nil when none exists.
// A malformed DailyTime degrades to "never eligible today" with the parse
// problem in Reason — one broken schedule must not break the sweep.
func DecideDaily(cfg domain.ReminderConfig, userID int64, lastFired *time.Time, now time.Time, tolerance time.Duration) domain.ReminderDecision {
	dec := decision(userID, domain.ReminderDaily, now)

	if !cfg.Enabled || !cfg.DailyEnabled {
		dec.Reason = "daily reminders disabled"
		return dec
	}
	if !cfg.ActiveWeekdays.Contains(ISOWeekday(now)) {
		dec.Reason = "not an active weekday"
		return dec
	}
	if cfg.DailyTime == "" {
		dec.Reason = "no daily time configured"
		return dec
	}
	h, m, err := parseWallClock(cfg.DailyTime)
	if err != nil {
		dec.Reason = fmt.Sprintf("bad daily_time %q: %v", cfg.DailyTime, err)
		dec.Degraded = true
		return dec
	}
	if tolerance <= 0 {
		tolerance = DefaultDailyTolerance
	}
	if d := minutesApart(now, h, m); d > int(tolerance.Minutes()) {
		dec.Reason = fmt.Sprintf("outside reminder window (%d min away)", d)
		return dec
	}
	if firedToday(lastFired, now) {
		dec.Reason = "already fired today"
		return dec
	}

	dec.ShouldFire = true
	return dec
}

// DecideInactive evaluates the inactivity reminder. lastActivity is the
// user's most recent practice date, nil when they have never logged one.
func DecideInactive(cfg domain.ReminderConfig, userID int64, lastActivity, lastFired *time.Time, now time.Time) domain.ReminderDecision {
	dec := decision(userID, domain.ReminderInactive, now)

	if !cfg.Enabled {
		dec.Reason = "reminders disabled"
		return dec
	}
	threshold := cfg.InactiveThresholdDays
	if threshold <= 0 {
		dec.Reason = "no inactivity threshold configured"
		return dec
	}
	if lastActivity != nil && DaysBetween(*lastActivity, now) < threshold {
		dec.Reason = fmt.Sprintf("active %d day(s) ago", DaysBetween(*lastActivity, now))
		return dec
	}
	if firedToday(lastFired, now) {
		dec.Reason = "already fired today"
		return dec
	}

	dec.ShouldFire = true
	return dec
}

// DecideAfterAction evaluates the reminder that follows a completed
// practice. No time-of-day gate — only the toggles and the daily dedup.
func DecideAfterAction(cfg domain.ReminderConfig, userID int64, lastFired *time.Time, now time.Time) domain.ReminderDecision {
	dec := decision(userID, domain.ReminderAfterAction, now)
	if !cfg.Enabled || !cfg.AfterAction {
		dec.Reason = "after-action reminders disabled"
		return dec
	}
	if firedToday(lastFired, now) {
		dec.Reason = "already fired today"
		return dec
	}
	dec.ShouldFire = true
	return dec
}

// DecideAfterNewAction evaluates the reminder that follows newly extracted
// action items.
func DecideAfterNewAction(cfg domain.ReminderConfig, userID int64, lastFired *time.Time, now time.Time) domain.ReminderDecision {
	dec := decision(userID, domain.ReminderAfterNewAction, now)
	if !cfg.Enabled || !cfg.AfterNewAction {
		dec.Reason = "after-new-action reminders disabled"
		return dec
	}
	if firedToday(lastFired, now) {
		dec.Reason = "already fired today"
		return dec
	}
	dec.ShouldFire = true
	return dec
}

func decision(userID int64, kind domain.ReminderKind, now time.Time) domain.ReminderDecision {
	return domain.ReminderDecision{
		Kind: kind,
		Key:  domain.DedupKey{UserID: userID, Kind: kind, Day: DayKey(now)},
	}
}

func firedToday(lastFired *time.Time, now time.Time) bool {
	return lastFired != nil && SameDay(*lastFired, now)
}

// parseWallClock parses "HH:MM" or "HH:MM:SS".
func parseWallClock(s string) (hour, min int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("want HH:MM or HH:MM:SS")
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour %q", parts[0])
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("bad minute %q", parts[1])
	}
	return hour, min, nil
}

// minutesApart is the absolute wall-clock distance, in minutes, between now
// and the given hour:minute on the same day.
func minutesApart(now time.Time, hour, min int) int {
	d := (now.Hour()*60 + now.Minute()) - (hour*60 + min)
	if d < 0 {
		d = -d
	}
	return d
}
