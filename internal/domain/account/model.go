package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength       = 254
	MaxProfileNameLength = 100
)

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Account holds one registered user. The rest of the application treats the
// ID as an opaque actor identifier; only the auth flow and the directory
// projection look inside.
type Account struct {
	ID           string
	Email        string
	ProfileName  string
	PasswordHash string
	CreatedAt    time.Time
}

// DirectoryEntry is the public subset of an account exposed for display.
// Never carries credential data.
type DirectoryEntry struct {
	ID          string
	Email       string
	ProfileName string
}

// Validate checks if the Account has valid data.
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if len(a.ProfileName) > MaxProfileNameLength {
		return errors.New("profile name cannot exceed 100 characters")
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and >= 8 characters
// POST: PasswordHash is set to the bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 8 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// DisplayName returns the profile name, falling back to the email address.
func (a *Account) DisplayName() string {
	if a.ProfileName != "" {
		return a.ProfileName
	}
	return a.Email
}

// Directory returns the public fields of the account.
func (a *Account) Directory() DirectoryEntry {
	return DirectoryEntry{ID: a.ID, Email: a.Email, ProfileName: a.ProfileName}
}
