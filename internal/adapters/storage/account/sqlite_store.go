package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"partymap/internal/adapters/storage"
	domain "partymap/internal/domain/account"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// POST: Returns the entity or an error wrapping sql.ErrNoRows if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, profile_name, password_hash, created_at FROM account WHERE id = ?`, id)
	a, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return a, err
}

// GetByEmail retrieves an Account by email.
// POST: Returns the entity or an error wrapping sql.ErrNoRows if absent
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, profile_name, password_hash, created_at FROM account WHERE email = ?`, email)
	a, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return a, err
}

// Save persists an Account (insert or update).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, a domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, profile_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, profile_name=excluded.profile_name,
		   password_hash=excluded.password_hash`,
		a.ID, a.Email, a.ProfileName, a.PasswordHash, a.CreatedAt.Format(dateLayout))
	return err
}

// List returns all accounts for the directory.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, profile_name, password_hash, created_at FROM account
		 ORDER BY profile_name ASC, email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanAccount(scan func(...any) error) (domain.Account, error) {
	var a domain.Account
	var created string
	if err := scan(&a.ID, &a.Email, &a.ProfileName, &a.PasswordHash, &created); err != nil {
		return domain.Account{}, err
	}
	if created != "" {
		t, _ := time.Parse(dateLayout, created)
		a.CreatedAt = t
	}
	return a, nil
}
