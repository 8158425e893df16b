package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"partymap/internal/domain/event"
)

// EventStoreForRSVP defines the store interface needed by RSVP.
type EventStoreForRSVP interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
	ListInvited(ctx context.Context, eventID string) ([]string, error)
	UpsertRSVP(ctx context.Context, eventID, userID, response string, at time.Time) error
}

// RSVPInput carries input for the rsvp orchestrator.
type RSVPInput struct {
	Actor    string
	EventID  string
	Response string // yes, no, maybe
}

// RSVPDeps holds dependencies for RSVP.
type RSVPDeps struct {
	EventStore EventStoreForRSVP
	Now        func() time.Time
}

// ExecuteRSVP records or overwrites the actor's response. Unlike join and
// leave this is a total function over {yes, no, maybe}: any authorized
// actor may set any value at any time, and repeated calls keep exactly one
// record per actor.
func ExecuteRSVP(ctx context.Context, input RSVPInput, deps RSVPDeps) error {
	if input.Actor == "" {
		return event.ErrUnauthenticated
	}
	if !event.ValidResponse(input.Response) {
		return &event.InvalidArgumentError{Field: "response", Reason: "must be yes, no or maybe"}
	}

	e, err := deps.EventStore.GetByID(ctx, input.EventID)
	if err != nil {
		return event.ErrNotFound
	}
	if !e.Public {
		invited, err := deps.EventStore.ListInvited(ctx, input.EventID)
		if err != nil {
			return err
		}
		// Existence of a private event is itself hidden from non-invitees.
		if !event.CanRead(input.Actor, e, invited) {
			return event.ErrNotFound
		}
	}

	if err := deps.EventStore.UpsertRSVP(ctx, input.EventID, input.Actor, input.Response, deps.Now()); err != nil {
		return err
	}

	slog.Info("lifecycle_event", "event", "rsvp_recorded", "event_id", input.EventID, "user", input.Actor, "response", input.Response)
	return nil
}
