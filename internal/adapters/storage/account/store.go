package account

import (
	"context"

	domain "partymap/internal/domain/account"
)

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	// List returns all accounts ordered by profile name then email, for the
	// public directory.
	List(ctx context.Context) ([]domain.Account, error)
}
