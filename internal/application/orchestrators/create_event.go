package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"partymap/internal/domain/event"
)

// EventStoreForCreate defines the store interface needed by CreateEvent.
type EventStoreForCreate interface {
	Create(ctx context.Context, e event.Event) error
}

// CreateEventInput carries the draft supplied by the caller.
type CreateEventInput struct {
	Actor       string // authenticated account ID
	Title       string
	Description string
	X           float64
	Y           float64
	Public      bool
	Location    string
	Reward      string
	Points      int
	Expire      time.Time // zero means no expiry
}

// CreateEventDeps holds dependencies for CreateEvent.
type CreateEventDeps struct {
	EventStore EventStoreForCreate
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateEvent validates the draft and persists a new event owned by
// the actor, with empty participant and invite lists.
// POST: returns the stored event with its generated ID
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps CreateEventDeps) (event.Event, error) {
	if input.Actor == "" {
		return event.Event{}, event.ErrUnauthenticated
	}

	e := event.Event{
		ID:          deps.GenerateID(),
		Owner:       input.Actor,
		Title:       input.Title,
		Description: input.Description,
		X:           input.X,
		Y:           input.Y,
		Public:      input.Public,
		Location:    input.Location,
		Reward:      input.Reward,
		Points:      input.Points,
		Expire:      input.Expire,
		CreatedAt:   deps.Now(),
	}

	if err := e.Validate(); err != nil {
		return event.Event{}, err
	}

	if err := deps.EventStore.Create(ctx, e); err != nil {
		return event.Event{}, err
	}

	slog.Info("lifecycle_event", "event", "event_created", "event_id", e.ID, "owner", e.Owner, "public", e.Public)
	return e, nil
}
