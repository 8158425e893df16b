package orchestrators

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"partymap/internal/domain/event"
)

// EventStoreForUpdate defines the store interface needed by UpdateEvent.
type EventStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
	ListInvited(ctx context.Context, eventID string) ([]string, error)
	Update(ctx context.Context, e event.Event) error
}

// UpdateEventInput carries a partial field set keyed by field name, as
// supplied by the caller. Unknown or forbidden keys reject the whole set.
type UpdateEventInput struct {
	Actor   string
	EventID string
	Fields  map[string]any
}

// UpdateEventDeps holds dependencies for UpdateEvent.
type UpdateEventDeps struct {
	EventStore EventStoreForUpdate
}

// ExecuteUpdateEvent applies an owner's edit to the whitelisted fields.
// Any key outside the whitelist fails Forbidden, including attempts to
// touch owner, participants or the invite list. Supplied values are
// re-validated with the same rules as create.
func ExecuteUpdateEvent(ctx context.Context, input UpdateEventInput, deps UpdateEventDeps) (event.Event, error) {
	if input.Actor == "" {
		return event.Event{}, event.ErrUnauthenticated
	}

	e, err := deps.EventStore.GetByID(ctx, input.EventID)
	if err != nil {
		return event.Event{}, event.ErrNotFound
	}
	if !e.Public {
		invited, err := deps.EventStore.ListInvited(ctx, input.EventID)
		if err != nil {
			return event.Event{}, err
		}
		if !event.CanRead(input.Actor, e, invited) {
			return event.Event{}, event.ErrNotFound
		}
	}

	names := fieldNames(input.Fields)
	if !event.CanUpdateFields(input.Actor, e, names) {
		return event.Event{}, event.ErrForbidden
	}

	if err := applyFields(&e, input.Fields); err != nil {
		return event.Event{}, err
	}
	if err := e.Validate(); err != nil {
		return event.Event{}, err
	}

	if err := deps.EventStore.Update(ctx, e); err != nil {
		return event.Event{}, err
	}

	slog.Info("lifecycle_event", "event", "event_updated", "event_id", e.ID, "fields", names)
	return e, nil
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// applyFields copies the supplied values onto the event. Callers have
// already checked the whitelist, so every key here is a known field; a
// value of the wrong JSON type is an invalid argument.
func applyFields(e *event.Event, fields map[string]any) error {
	for name, raw := range fields {
		switch name {
		case "title", "description", "location", "reward":
			s, ok := raw.(string)
			if !ok {
				return &event.InvalidArgumentError{Field: name, Reason: "must be a string"}
			}
			switch name {
			case "title":
				e.Title = s
			case "description":
				e.Description = s
			case "location":
				e.Location = s
			case "reward":
				e.Reward = s
			}
		case "x", "y", "points":
			f, ok := toFloat(raw)
			if !ok {
				return &event.InvalidArgumentError{Field: name, Reason: "must be a number"}
			}
			switch name {
			case "x":
				e.X = f
			case "y":
				e.Y = f
			case "points":
				e.Points = int(f)
			}
		case "expire":
			switch v := raw.(type) {
			case nil:
				e.Expire = time.Time{}
			case string:
				if v == "" {
					e.Expire = time.Time{}
					break
				}
				t, err := time.Parse(time.RFC3339, v)
				if err != nil {
					return &event.InvalidArgumentError{Field: "expire", Reason: "must be an RFC 3339 timestamp"}
				}
				e.Expire = t
			case time.Time:
				e.Expire = v
			default:
				return &event.InvalidArgumentError{Field: "expire", Reason: "must be an RFC 3339 timestamp"}
			}
		}
	}
	return nil
}

// toFloat accepts the numeric types a JSON decoder or a direct caller
// may hand us.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
