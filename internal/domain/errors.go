package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Aggregation errors
	ErrInvalidRange = errors.New("invalid range: start date is after end date")

	// Record errors
	ErrActionNotFound      = errors.New("action not found")
	ErrPracticeLogNotFound = errors.New("practice log not found")
	ErrDuplicateLog        = errors.New("practice already logged for this day")
	ErrInvalidOutcome      = errors.New("unknown practice outcome")
	ErrInvalidStatus       = errors.New("unknown action status")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")

	// Account errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("account is disabled")

	// Extraction errors
	ErrExtractFailed  = errors.New("action extraction service failed")
	ErrExtractInvalid = errors.New("extraction response is not a valid action list")

	// Reminder errors
	ErrReminderLogNotFound = errors.New("reminder log not found")
	ErrUnknownReminderKind = errors.New("unknown reminder kind")
)
