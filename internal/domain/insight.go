package domain

import "time"

// ─── Streak Types ───────────────────────────────────────────────────────────

// StreakResult describes consecutive-day success runs for one subject.
type StreakResult struct {
	// LongestRun is the greatest number of calendar-consecutive success
	// dates anywhere in history.
	LongestRun int `json:"longest_run"`
	// CurrentRun is the run ending at the as-of date or the day before it
	// (one day of tolerance so a not-yet-logged today keeps the streak).
	// Zero once the last success is two or more days in the past.
	CurrentRun int `json:"current_run"`
}

// ─── Window Types ───────────────────────────────────────────────────────────

// WindowBucket is the aggregate for one calendar day or ISO week.
// Buckets exist for every period in a requested range, including empty ones,
// so callers can render continuous trend lines without gap-filling.
type WindowBucket struct {
	PeriodKey      string    `json:"period_key"` // "2024-03-07" or "2024-W10"
	PeriodStart    time.Time `json:"period_start"`
	TotalEvents    int       `json:"total_events"`
	SuccessEvents  float64   `json:"success_events"`  // fractional when partial outcomes are weighted
	CompletionRate float64   `json:"completion_rate"` // SuccessEvents/TotalEvents, 0 for empty buckets
}

// ─── Milestone Types ────────────────────────────────────────────────────────

// MilestoneKind names a discrete achievement fact.
type MilestoneKind string

const (
	MilestoneFirstSuccess  MilestoneKind = "first_success"
	MilestoneWeekStreak    MilestoneKind = "week_streak"
	MilestoneTargetReached MilestoneKind = "target_reached"
)

// Milestone is a derived achievement fact. The engine recomputes milestones
// fresh from history on every query; persistence and display dedup belong to
// the caller.
type Milestone struct {
	SubjectID   int64         `json:"subject_id"`
	Kind        MilestoneKind `json:"kind"`
	AchievedOn  time.Time     `json:"achieved_on"`
	Description string        `json:"description"`
}

// Target is an optional practice goal for one subject.
//
// The historical behavior — kept deliberately — is that target_reached fires
// once the window has elapsed, regardless of how many successes were logged.
// RequireCount opts into the stricter reading: the milestone also needs at
// least CountGoal successes inside the window.
type Target struct {
	SubjectID    int64     `json:"subject_id"`
	StartDate    time.Time `json:"start_date"`
	DurationDays int       `json:"duration_days"`
	RequireCount bool      `json:"require_count"`
	CountGoal    int       `json:"count_goal"`
}
