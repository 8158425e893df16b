package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"partymap/internal/domain/account"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ErrEmailTaken is returned when the email already has an account.
var ErrEmailTaken = errors.New("an account with this email already exists")

// CreateAccountInput carries input for the signup orchestrator.
type CreateAccountInput struct {
	Email       string
	ProfileName string
	Password    string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateAccount registers a new user.
// POST: account persisted with a bcrypt password hash, never the plaintext
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	a := account.Account{
		ID:          deps.GenerateID(),
		Email:       input.Email,
		ProfileName: input.ProfileName,
		CreatedAt:   deps.Now(),
	}
	if err := a.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := a.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return account.Account{}, ErrEmailTaken
	}

	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "account_created", "account_id", a.ID, "email", a.Email)
	return a, nil
}
