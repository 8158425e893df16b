package orchestrators

import (
	"context"
	"log/slog"

	"partymap/internal/domain/event"
)

// EventStoreForRemove defines the store interface needed by RemoveEvent.
type EventStoreForRemove interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
	ListInvited(ctx context.Context, eventID string) ([]string, error)
	CountParticipants(ctx context.Context, eventID string) (int, error)
	DeleteIfNoParticipants(ctx context.Context, id string) (bool, error)
}

// RemoveEventInput carries input for the remove orchestrator.
type RemoveEventInput struct {
	Actor   string
	EventID string
}

// RemoveEventDeps holds dependencies for RemoveEvent.
type RemoveEventDeps struct {
	EventStore EventStoreForRemove
}

// ExecuteRemoveEvent deletes an event with no helpers. The zero-participant
// guard runs inside the store's conditional delete, so a join racing this
// call cannot orphan its commitment.
func ExecuteRemoveEvent(ctx context.Context, input RemoveEventInput, deps RemoveEventDeps) error {
	if input.Actor == "" {
		return event.ErrUnauthenticated
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
		if !event.CanRead(input.Actor, e, invited) {
			return event.ErrNotFound
		}
	}

	count, err := deps.EventStore.CountParticipants(ctx, input.EventID)
	if err != nil {
		return err
	}
	if !event.CanDelete(input.Actor, e, count) {
		if input.Actor != e.Owner {
			return event.ErrForbidden
		}
		return event.ErrConflict
	}

	deleted, err := deps.EventStore.DeleteIfNoParticipants(ctx, input.EventID)
	if err != nil {
		return err
	}
	if !deleted {
		// A helper joined between the count and the delete.
		return event.ErrConflict
	}

	slog.Info("lifecycle_event", "event", "event_removed", "event_id", input.EventID, "owner", input.Actor)
	return nil
}
