package outbox

import (
	"context"

	domain "partymap/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry (insert or update).
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries awaiting delivery (pending or retrying),
	// oldest first, up to limit.
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns permanently failed entries, most recent attempt first.
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
}
