package event

import (
	"context"
	"time"

	domain "partymap/internal/domain/event"
)

// Store persists Event state together with its participant and invite lists.
//
// The participant mutations are deliberately conditional single statements:
// two concurrent joins for the same event must never produce a duplicate
// record or a lost update, so "add if absent" and "remove exactly mine" are
// decided inside the database, not by a read-then-write sequence in Go.
type Store interface {
	Create(ctx context.Context, e domain.Event) error
	GetByID(ctx context.Context, id string) (domain.Event, error)
	// Update rewrites the owner-editable columns only. Owner, id and the
	// child tables are never touched by this statement.
	Update(ctx context.Context, e domain.Event) error
	// DeleteIfNoParticipants removes the event only while its participant
	// list is empty. Returns false when the guard failed (helpers exist).
	DeleteIfNoParticipants(ctx context.Context, id string) (bool, error)

	// ListVisibleTo returns events readable by viewer: public ones plus
	// private ones the viewer owns or is invited to. An empty viewer id
	// means anonymous and yields public events only.
	ListVisibleTo(ctx context.Context, viewer string) ([]domain.Event, error)

	// AddParticipant inserts an attendance record if the user has none.
	// Returns false when the user was already a participant.
	AddParticipant(ctx context.Context, eventID, userID, response string, at time.Time) (bool, error)
	// RemoveParticipant deletes the record belonging to exactly this user.
	// Returns false when the user was not a participant.
	RemoveParticipant(ctx context.Context, eventID, userID string) (bool, error)
	// UpsertRSVP records or overwrites the user's response in place.
	UpsertRSVP(ctx context.Context, eventID, userID, response string, at time.Time) error
	ListParticipants(ctx context.Context, eventID string) ([]domain.Participant, error)
	CountParticipants(ctx context.Context, eventID string) (int, error)

	// AddInvite adds the user to the invite list; inviting an already
	// invited user is a silent no-op.
	AddInvite(ctx context.Context, eventID, userID string, at time.Time) error
	ListInvited(ctx context.Context, eventID string) ([]string, error)
	IsInvited(ctx context.Context, eventID, userID string) (bool, error)
}
