package projections

import (
	"context"

	domainAccount "partymap/internal/domain/account"
	domainEvent "partymap/internal/domain/event"
)

// EventStore interface for event read queries.
type EventStore interface {
	GetByID(ctx context.Context, id string) (domainEvent.Event, error)
	ListVisibleTo(ctx context.Context, viewer string) ([]domainEvent.Event, error)
	ListParticipants(ctx context.Context, eventID string) ([]domainEvent.Participant, error)
	ListInvited(ctx context.Context, eventID string) ([]string, error)
	CountParticipants(ctx context.Context, eventID string) (int, error)
}

// AccountStore interface for directory queries.
type AccountStore interface {
	List(ctx context.Context) ([]domainAccount.Account, error)
}
