package projections

import (
	"context"
	"time"

	domainEvent "partymap/internal/domain/event"
)

// GetEventQuery carries query parameters.
type GetEventQuery struct {
	Viewer  string
	EventID string
}

// GetEventResult carries the full detail view of one event. Invited is
// populated for the owner only; other viewers have no business reading the
// invite list.
type GetEventResult struct {
	Event        domainEvent.Event
	Participants []domainEvent.Participant
	Invited      []string
	MyResponse   string
	Expired      bool
	CanEdit      bool
}

// GetEventDeps holds dependencies for GetEvent.
type GetEventDeps struct {
	EventStore EventStore
	Now        func() time.Time
}

// QueryGetEvent retrieves one event as seen by the viewer.
// POST: an invisible private event yields ErrNotFound, never ErrForbidden
func QueryGetEvent(ctx context.Context, query GetEventQuery, deps GetEventDeps) (GetEventResult, error) {
	e, err := deps.EventStore.GetByID(ctx, query.EventID)
	if err != nil {
		return GetEventResult{}, domainEvent.ErrNotFound
	}

	invited, err := deps.EventStore.ListInvited(ctx, query.EventID)
	if err != nil {
		return GetEventResult{}, err
	}
	if !domainEvent.CanRead(query.Viewer, e, invited) {
		return GetEventResult{}, domainEvent.ErrNotFound
	}

	participants, err := deps.EventStore.ListParticipants(ctx, query.EventID)
	if err != nil {
		return GetEventResult{}, err
	}

	result := GetEventResult{
		Event:        e,
		Participants: participants,
		Expired:      e.IsExpired(deps.Now()),
		CanEdit:      query.Viewer != "" && query.Viewer == e.Owner,
	}
	if result.CanEdit {
		result.Invited = invited
	}
	for _, p := range participants {
		if p.User == query.Viewer {
			result.MyResponse = p.Response
			break
		}
	}
	return result, nil
}
