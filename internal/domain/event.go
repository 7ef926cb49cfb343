// Package domain holds the pure types shared across praxis.
// Nothing in this package touches storage, the network, or the clock.
package domain

import "time"

// Outcome is the result recorded for one day of practice.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
	OutcomeSkipped Outcome = "skipped"
	OutcomePartial Outcome = "partial"
)

// ValidOutcome reports whether s names a known outcome.
func ValidOutcome(s string) bool {
	switch Outcome(s) {
	case OutcomeSuccess, OutcomeFail, OutcomeSkipped, OutcomePartial:
		return true
	}
	return false
}

// EventRecord is one dated outcome event for a tracked action.
// At most one record exists per (SubjectID, OccurredOn) — the storage layer
// rejects same-day resubmission, so consumers never deduplicate.
type EventRecord struct {
	SubjectID  int64     `json:"subject_id"`
	OccurredOn time.Time `json:"occurred_on"` // calendar date; time-of-day is ignored
	Outcome    Outcome   `json:"outcome"`
}
