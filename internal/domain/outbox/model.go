package outbox

import (
	"errors"
	"time"
)

// Status constants for entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Kind constants. Invitation emails are the only external action today.
const (
	KindInviteEmail = "invite_email"
)

// DefaultMaxAttempts bounds retries for a single entry.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyKind    = errors.New("entry kind is required")
	ErrEmptyPayload = errors.New("payload is required")
)

// Entry is one queued external action. Invite never waits on delivery;
// it records an entry here and the retry loop drains it in the background.
type Entry struct {
	ID            string
	Kind          string
	Payload       string // JSON payload for replay
	Status        string
	Attempts      int
	MaxAttempts   int
	LastAttemptAt time.Time
	CreatedAt     time.Time
	ExternalID    string // provider message ID once delivered
	LastError     string
}

// Validate checks that the entry can be queued.
// POST: Returns nil if valid, error otherwise. Defaults MaxAttempts.
func (e *Entry) Validate() error {
	if e.Kind == "" {
		return ErrEmptyKind
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry reports whether the retry loop should pick this entry up.
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying || e.Status == StatusFailed) &&
		e.Attempts < e.MaxAttempts
}

// MarkAttempt records that a delivery attempt is starting.
// POST: Attempts incremented, LastAttemptAt updated, status set to retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptAt = now
	e.Status = StatusRetrying
}

// MarkDelivered marks the entry as successfully delivered.
func (e *Entry) MarkDelivered(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.LastError = ""
}

// MarkFailed records a failed attempt. The entry goes terminal only once
// attempts are exhausted; otherwise it stays retryable.
func (e *Entry) MarkFailed(err error) {
	e.LastError = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// NextRetryDelay returns the exponential backoff before the next attempt,
// capped at maxDelay.
func (e *Entry) NextRetryDelay(baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << e.Attempts)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
