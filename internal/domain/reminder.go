package domain

import "time"

// ─── Reminder Types ─────────────────────────────────────────────────────────

// ReminderKind names one of the four reminder triggers.
type ReminderKind string

const (
	ReminderDaily          ReminderKind = "daily"
	ReminderInactive       ReminderKind = "inactive"
	ReminderAfterAction    ReminderKind = "after_action"
	ReminderAfterNewAction ReminderKind = "after_new_action"
)

// ValidReminderKind reports whether s names a known reminder kind.
func ValidReminderKind(s string) bool {
	switch ReminderKind(s) {
	case ReminderDaily, ReminderInactive, ReminderAfterAction, ReminderAfterNewAction:
		return true
	}
	return false
}

// WeekdaySet is a subset of the seven weekdays, ISO-indexed: Monday=0 through
// Sunday=6. Storage adapters translate any other convention at the boundary;
// mixed conventions never cross into the engine.
type WeekdaySet [7]bool

// NewWeekdaySet builds a set from ISO weekday indexes. Out-of-range values
// are ignored.
func NewWeekdaySet(days ...int) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= 0 && d < 7 {
			s[d] = true
		}
	}
	return s
}

// AllWeekdays returns the full seven-day set.
func AllWeekdays() WeekdaySet {
	return WeekdaySet{true, true, true, true, true, true, true}
}

// Contains reports whether the ISO weekday index d is in the set.
func (s WeekdaySet) Contains(d int) bool {
	return d >= 0 && d < 7 && s[d]
}

// Days returns the ISO weekday indexes in the set, ascending.
func (s WeekdaySet) Days() []int {
	var days []int
	for i, on := range s {
		if on {
			days = append(days, i)
		}
	}
	return days
}

// ReminderConfig is one user's reminder schedule. Owned by the settings
// store; the engine only reads it.
type ReminderConfig struct {
	Enabled               bool       `json:"enabled"`
	DailyEnabled          bool       `json:"daily_enabled"`
	DailyTime             string     `json:"daily_time"` // "HH:MM" or "HH:MM:SS" wall clock
	ActiveWeekdays        WeekdaySet `json:"active_weekdays"`
	InactiveThresholdDays int        `json:"inactive_threshold_days"`
	AfterAction           bool       `json:"after_action"`
	AfterNewAction        bool       `json:"after_new_action"`
}

// DedupKey identifies "this reminder already fired today". The caller must
// check-and-insert it atomically before delivering anything.
type DedupKey struct {
	UserID int64        `json:"user_id"`
	Kind   ReminderKind `json:"kind"`
	Day    string       `json:"day"` // "2006-01-02"
}

// ReminderDecision is the engine's fire/no-fire verdict. The engine offers
// the decision at least once; effective at-most-once delivery comes from the
// caller logging the DedupKey atomically before sending.
type ReminderDecision struct {
	ShouldFire bool         `json:"should_fire"`
	Kind       ReminderKind `json:"kind"`
	Key        DedupKey     `json:"key"`
	// Reason explains a no-fire verdict, including degraded configuration
	// ("bad daily_time ..."), for the caller's logging. Empty on fire.
	Reason string `json:"reason,omitempty"`
	// Degraded marks a no-fire verdict caused by malformed configuration
	// rather than the schedule. Sweeps warn on these and stay quiet
	// otherwise.
	Degraded bool `json:"degraded,omitempty"`
}

// ReminderSetting is the persisted settings row backing a ReminderConfig,
// including delivery-method preferences the engine does not care about.
type ReminderSetting struct {
	UserID                int64      `json:"user_id"`
	Enabled               bool       `json:"is_enabled"`
	DailyEnabled          bool       `json:"daily_reminder_enabled"`
	DailyTime             string     `json:"daily_reminder_time"`
	ActiveWeekdays        WeekdaySet `json:"active_weekdays"`
	AfterAction           bool       `json:"after_action_reminder"`
	AfterNewAction        bool       `json:"after_new_action_reminder"`
	InactiveThresholdDays int        `json:"inactive_days_threshold"`
	BrowserNotification   bool       `json:"browser_notification"`
	EmailNotification     bool       `json:"email_notification"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Config projects the setting row onto the engine's input type.
func (s ReminderSetting) Config() ReminderConfig {
	return ReminderConfig{
		Enabled:               s.Enabled,
		DailyEnabled:          s.DailyEnabled,
		DailyTime:             s.DailyTime,
		ActiveWeekdays:        s.ActiveWeekdays,
		InactiveThresholdDays: s.InactiveThresholdDays,
		AfterAction:           s.AfterAction,
		AfterNewAction:        s.AfterNewAction,
	}
}

// ReminderLog records one fired reminder.
type ReminderLog struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	Kind        ReminderKind `json:"reminder_type"`
	Day         string       `json:"day"`
	TriggeredAt time.Time    `json:"triggered_at"`
	DismissedAt *time.Time   `json:"dismissed_at,omitempty"`
	ActionTaken bool         `json:"action_taken"`
	Method      string       `json:"notification_method"` // browser | email | both
}
