package orchestrators

import (
	"context"
	"errors"
	"testing"

	"partymap/internal/domain/account"
)

func loginFixture(t *testing.T) *mockAccountStore {
	t.Helper()
	store := newMockAccountStore()
	a := account.Account{ID: "u1", Email: "olive@example.com", ProfileName: "Olive"}
	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("fixture password: %v", err)
	}
	store.accounts["u1"] = a
	return store
}

// TestExecuteLogin_Valid tests the login happy path.
func TestExecuteLogin_Valid(t *testing.T) {
	store := loginFixture(t)

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "olive@example.com",
		Password: "correct horse battery",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccountID != "u1" || result.ProfileName != "Olive" {
		t.Errorf("unexpected result: %+v", result)
	}
}

// TestExecuteLogin_BadCredentials tests that every failure mode collapses
// into the same error.
func TestExecuteLogin_BadCredentials(t *testing.T) {
	store := loginFixture(t)
	tests := []struct {
		name  string
		input LoginInput
	}{
		{"unknown email", LoginInput{Email: "nobody@example.com", Password: "correct horse battery"}},
		{"wrong password", LoginInput{Email: "olive@example.com", Password: "wrong password"}},
		{"empty email", LoginInput{Password: "correct horse battery"}},
		{"empty password", LoginInput{Email: "olive@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteLogin(context.Background(), tt.input, LoginDeps{AccountStore: store})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}
