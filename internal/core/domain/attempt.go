package domain

import "time"

// AttemptOutcome is the state of a submission attempt.
type AttemptOutcome string

// Attempt outcomes. Succeeded and Failed are terminal.
const (
	OutcomeInFlight  AttemptOutcome = "in_flight"
	OutcomeSucceeded AttemptOutcome = "succeeded"
	OutcomeFailed    AttemptOutcome = "failed"
)

// IsTerminal returns true for succeeded and failed.
func (o AttemptOutcome) IsTerminal() bool {
	return o == OutcomeSucceeded || o == OutcomeFailed
}

// SubmissionAttempt records one upload of the three slots.
type SubmissionAttempt struct {
	// ID is a unique attempt identifier.
	ID string

	// DocumentType is the document submitted.
	DocumentType DocumentType

	// Number is the 1-based attempt number since the last file selection.
	Number int

	// Progress is the last reported percentage.
	Progress int

	// Outcome is the attempt state.
	Outcome AttemptOutcome

	// StatusCode is the HTTP status, 0 when none was received.
	StatusCode int

	// Reason is the user-facing failure message.
	Reason string

	// BytesTotal is the size of the uploaded files.
	BytesTotal int64

	// StartedAt is when the upload began.
	StartedAt time.Time

	// FinishedAt is when the attempt reached a terminal outcome.
	FinishedAt time.Time
}

// Duration returns how long the attempt ran.
func (a SubmissionAttempt) Duration() time.Duration {
	if a.FinishedAt.IsZero() {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}
