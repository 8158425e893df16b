package event

import "time"

// RSVP response values.
const (
	ResponseYes   = "yes"
	ResponseNo    = "no"
	ResponseMaybe = "maybe"
)

// Max length constants.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxLocationLength    = 100
	MaxRewardLength      = 100
)

// Event represents a help event placed on the shared map.
// INVARIANT: ID and Owner never change after creation.
// INVARIANT: X and Y stay within [0, 1].
type Event struct {
	ID          string
	Owner       string // account ID of the creator
	Title       string
	Description string
	X           float64 // normalized map coordinates in [0, 1]
	Y           float64
	Public      bool
	Location    string    // free-text place description, distinct from x/y
	Reward      string    // what helpers get
	Points      int       // reward points, never negative
	Expire      time.Time // zero value means no expiry
	CreatedAt   time.Time
}

// Participant is one user's attendance record for an event.
// At most one record exists per (event, user) pair; re-affirming updates
// the response in place.
type Participant struct {
	User      string
	Response  string // yes, no, maybe
	CreatedAt time.Time
}

// ValidResponse reports whether r is one of the three RSVP values.
func ValidResponse(r string) bool {
	return r == ResponseYes || r == ResponseNo || r == ResponseMaybe
}

// Validate checks the event's invariants. Checks run in a fixed order
// (required fields, then numeric bounds, then length bounds) so the first
// reported violation is deterministic regardless of other fields.
// POST: returns nil if valid, *InvalidArgumentError naming the field otherwise
func (e *Event) Validate() error {
	if e.Title == "" {
		return invalidArg("title", "is required")
	}
	if e.Description == "" {
		return invalidArg("description", "is required")
	}
	if e.X < 0 || e.X > 1 {
		return invalidArg("x", "must be between 0 and 1")
	}
	if e.Y < 0 || e.Y > 1 {
		return invalidArg("y", "must be between 0 and 1")
	}
	if e.Points < 0 {
		return invalidArg("points", "cannot be negative")
	}
	if len(e.Title) > MaxTitleLength {
		return invalidArg("title", "cannot exceed 100 characters")
	}
	if len(e.Description) > MaxDescriptionLength {
		return invalidArg("description", "cannot exceed 1000 characters")
	}
	if len(e.Location) > MaxLocationLength {
		return invalidArg("location", "cannot exceed 100 characters")
	}
	if len(e.Reward) > MaxRewardLength {
		return invalidArg("reward", "cannot exceed 100 characters")
	}
	return nil
}

// IsExpired reports whether the event's expiry has passed as of now.
// An event with no expiry never expires.
func (e *Event) IsExpired(now time.Time) bool {
	return !e.Expire.IsZero() && e.Expire.Before(now)
}
