package outbox

import (
	"context"
	"database/sql"
	"time"

	"partymap/internal/adapters/storage"
	domain "partymap/internal/domain/outbox"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the outbox Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an outbox entry by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, payload, status, attempts, max_attempts, last_attempt_at, created_at, external_id, last_error
		 FROM outbox WHERE id = ?`, id)
	return scanEntry(row.Scan)
}

// Save persists an outbox entry (insert or update).
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	lastAttempt := ""
	if !e.LastAttemptAt.IsZero() {
		lastAttempt = e.LastAttemptAt.Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (id, kind, payload, status, attempts, max_attempts, last_attempt_at, created_at, external_id, last_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   kind=excluded.kind, payload=excluded.payload, status=excluded.status,
		   attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempt_at=excluded.last_attempt_at, external_id=excluded.external_id,
		   last_error=excluded.last_error`,
		e.ID, e.Kind, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		lastAttempt, e.CreatedAt.Format(dateLayout), e.ExternalID, e.LastError)
	return err
}

// ListPending returns entries awaiting delivery, oldest first.
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, payload, status, attempts, max_attempts, last_attempt_at, created_at, external_id, last_error
		 FROM outbox WHERE status IN (?, ?) ORDER BY created_at ASC LIMIT ?`,
		domain.StatusPending, domain.StatusRetrying, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListFailed returns permanently failed entries, most recent attempt first.
func (s *SQLiteStore) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, payload, status, attempts, max_attempts, last_attempt_at, created_at, external_id, last_error
		 FROM outbox WHERE status = ? AND attempts >= max_attempts ORDER BY last_attempt_at DESC LIMIT ?`,
		domain.StatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntry(scan func(...any) error) (domain.Entry, error) {
	var e domain.Entry
	var lastAttempt, created string
	err := scan(&e.ID, &e.Kind, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
		&lastAttempt, &created, &e.ExternalID, &e.LastError)
	if err != nil {
		return domain.Entry{}, err
	}
	e.LastAttemptAt = parseTime(lastAttempt)
	e.CreatedAt = parseTime(created)
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, s)
	return t
}
