package domain

import "time"

// ─── Persistence Rows ───────────────────────────────────────────────────────
// Row types mirror the sqlite schema. Soft-deleted rows keep their data but
// carry DeletedAt; every query in the store filters them out.

// ActionStatus is the lifecycle state of an action item.
type ActionStatus string

const (
	StatusTodo       ActionStatus = "todo"
	StatusInProgress ActionStatus = "in_progress"
	StatusDone       ActionStatus = "done"
)

// ValidActionStatus reports whether s names a known status.
func ValidActionStatus(s string) bool {
	switch ActionStatus(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Frequency is how often an action is meant to be practiced.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ValidFrequency reports whether s names a known frequency.
func ValidFrequency(s string) bool {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// User is an account row.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	Plan         string     `json:"plan"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// Action is one extracted action item.
type Action struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	BookTitle     string       `json:"book_title"`
	SourceExcerpt string       `json:"source_excerpt"`
	ActionText    string       `json:"action_text"`
	Tags          []string     `json:"tags"`
	Frequency     Frequency    `json:"frequency"`
	Status        ActionStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	DeletedAt     *time.Time   `json:"-"`
}

// PracticeLog is one dated practice entry against an action.
type PracticeLog struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	ActionID  int64      `json:"action_id"`
	Date      time.Time  `json:"date"`
	Result    Outcome    `json:"result"`
	Notes     string     `json:"notes,omitempty"`
	Rating    *int       `json:"rating,omitempty"` // 1–5
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// Event projects the log onto the engine's event type.
func (p PracticeLog) Event() EventRecord {
	return EventRecord{SubjectID: p.ActionID, OccurredOn: p.Date, Outcome: p.Result}
}
