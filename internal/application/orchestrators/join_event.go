package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"partymap/internal/domain/event"
)

// EventStoreForJoin defines the store interface needed by Join and Leave.
type EventStoreForJoin interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
	ListInvited(ctx context.Context, eventID string) ([]string, error)
	AddParticipant(ctx context.Context, eventID, userID, response string, at time.Time) (bool, error)
	RemoveParticipant(ctx context.Context, eventID, userID string) (bool, error)
}

// JoinEventInput carries input for the join orchestrator.
type JoinEventInput struct {
	Actor   string
	EventID string
}

// JoinEventDeps holds dependencies for JoinEvent.
type JoinEventDeps struct {
	EventStore EventStoreForJoin
	Now        func() time.Time
}

// visibleEvent loads the event and hides private events from outsiders.
// An event the actor may not read is reported as absent, never as
// forbidden, so private events do not leak their existence.
func visibleEvent(ctx context.Context, store EventStoreForJoin, actor, eventID string) (event.Event, error) {
	e, err := store.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, event.ErrNotFound
	}
	if !e.Public {
		invited, err := store.ListInvited(ctx, eventID)
		if err != nil {
			return event.Event{}, err
		}
		if !event.CanRead(actor, e, invited) {
			return event.Event{}, event.ErrNotFound
		}
	}
	return e, nil
}

// ExecuteJoinEvent commits the actor to help with an event.
// The participant insert is conditional in the store, so a second join is
// reported as AlreadyJoined rather than silently duplicated or ignored.
func ExecuteJoinEvent(ctx context.Context, input JoinEventInput, deps JoinEventDeps) error {
	if input.Actor == "" {
		return event.ErrUnauthenticated
	}

	e, err := visibleEvent(ctx, deps.EventStore, input.Actor, input.EventID)
	if err != nil {
		return err
	}
	if input.Actor == e.Owner {
		return &event.InvalidArgumentError{Field: "self", Reason: "you cannot help your own event"}
	}

	added, err := deps.EventStore.AddParticipant(ctx, input.EventID, input.Actor, event.ResponseYes, deps.Now())
	if err != nil {
		return err
	}
	if !added {
		return event.ErrAlreadyJoined
	}

	slog.Info("lifecycle_event", "event", "helper_joined", "event_id", input.EventID, "user", input.Actor)
	return nil
}

// LeaveEventInput carries input for the leave orchestrator.
type LeaveEventInput struct {
	Actor   string
	EventID string
}

// LeaveEventDeps holds dependencies for LeaveEvent.
type LeaveEventDeps struct {
	EventStore EventStoreForJoin
}

// ExecuteLeaveEvent withdraws the actor's commitment. The record is removed
// by exact identity match; other helpers are never touched.
func ExecuteLeaveEvent(ctx context.Context, input LeaveEventInput, deps LeaveEventDeps) error {
	if input.Actor == "" {
		return event.ErrUnauthenticated
	}

	if _, err := visibleEvent(ctx, deps.EventStore, input.Actor, input.EventID); err != nil {
		return err
	}

	removed, err := deps.EventStore.RemoveParticipant(ctx, input.EventID, input.Actor)
	if err != nil {
		return err
	}
	if !removed {
		return event.ErrNotJoined
	}

	slog.Info("lifecycle_event", "event", "helper_left", "event_id", input.EventID, "user", input.Actor)
	return nil
}
