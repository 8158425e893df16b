package event

import (
	"context"
	"database/sql"
	"time"

	"partymap/internal/adapters/storage"
	domain "partymap/internal/domain/event"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db is a valid, open database connection with the schema applied
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a new event row.
// PRE: e is a valid Event (Validate() returns nil) with ID and Owner set
func (s *SQLiteStore) Create(ctx context.Context, e domain.Event) error {
	expire := ""
	if !e.Expire.IsZero() {
		expire = e.Expire.Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (id, owner, title, description, x, y, public, location, reward, points, expire, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Owner, e.Title, e.Description, e.X, e.Y, boolToInt(e.Public),
		e.Location, e.Reward, e.Points, expire, e.CreatedAt.Format(dateLayout))
	return err
}

// GetByID retrieves an event by ID.
// POST: returns the event, or sql.ErrNoRows when absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, title, description, x, y, public, location, reward, points, expire, created_at
		 FROM event WHERE id = ?`, id)
	return scanEvent(row)
}

// Update rewrites the owner-editable columns. Owner and created_at are
// deliberately absent from the SET list.
func (s *SQLiteStore) Update(ctx context.Context, e domain.Event) error {
	expire := ""
	if !e.Expire.IsZero() {
		expire = e.Expire.Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE event SET title=?, description=?, x=?, y=?, location=?, reward=?, points=?, expire=?
		 WHERE id=?`,
		e.Title, e.Description, e.X, e.Y, e.Location, e.Reward, e.Points, expire, e.ID)
	return err
}

// DeleteIfNoParticipants removes the event only while no attendance records
// exist. The guard runs inside the DELETE itself so a concurrent join cannot
// slip between check and delete.
func (s *SQLiteStore) DeleteIfNoParticipants(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM event
		 WHERE id = ? AND NOT EXISTS (SELECT 1 FROM participant WHERE event_id = ?)`,
		id, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListVisibleTo returns events readable by viewer, newest first.
func (s *SQLiteStore) ListVisibleTo(ctx context.Context, viewer string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, title, description, x, y, public, location, reward, points, expire, created_at
		 FROM event
		 WHERE public = 1
		    OR owner = ?
		    OR EXISTS (SELECT 1 FROM invite WHERE invite.event_id = event.id AND invite.user_id = ?)
		 ORDER BY created_at DESC`,
		viewer, viewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEventRows(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AddParticipant inserts an attendance record unless one already exists.
// POST: returns false without mutation when the user already has a record
func (s *SQLiteStore) AddParticipant(ctx context.Context, eventID, userID, response string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO participant (event_id, user_id, response, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(event_id, user_id) DO NOTHING`,
		eventID, userID, response, at.Format(dateLayout))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveParticipant deletes the record matching exactly this user.
// POST: returns false when the user had no record
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM participant WHERE event_id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertRSVP records or overwrites the user's response in a single statement,
// so repeated calls never duplicate the row.
func (s *SQLiteStore) UpsertRSVP(ctx context.Context, eventID, userID, response string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participant (event_id, user_id, response, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(event_id, user_id) DO UPDATE SET response = excluded.response`,
		eventID, userID, response, at.Format(dateLayout))
	return err
}

// ListParticipants returns attendance records ordered by join time.
func (s *SQLiteStore) ListParticipants(ctx context.Context, eventID string) ([]domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, response, created_at FROM participant
		 WHERE event_id = ? ORDER BY created_at ASC, user_id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []domain.Participant
	for rows.Next() {
		var p domain.Participant
		var created string
		if err := rows.Scan(&p.User, &p.Response, &created); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(created)
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// CountParticipants returns the number of attendance records for the event.
func (s *SQLiteStore) CountParticipants(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participant WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// AddInvite adds the user to the invite list; duplicates are ignored.
func (s *SQLiteStore) AddInvite(ctx context.Context, eventID, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO invite (event_id, user_id, created_at) VALUES (?, ?, ?)`,
		eventID, userID, at.Format(dateLayout))
	return err
}

// ListInvited returns the invited user ids for the event.
func (s *SQLiteStore) ListInvited(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM invite WHERE event_id = ? ORDER BY created_at ASC, user_id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// IsInvited reports whether the user is on the event's invite list.
func (s *SQLiteStore) IsInvited(ctx context.Context, eventID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invite WHERE event_id = ? AND user_id = ?`, eventID, userID).Scan(&n)
	return n > 0, err
}

func scanEvent(row *sql.Row) (domain.Event, error) {
	var e domain.Event
	var public int
	var expire, created string
	err := row.Scan(&e.ID, &e.Owner, &e.Title, &e.Description, &e.X, &e.Y, &public,
		&e.Location, &e.Reward, &e.Points, &expire, &created)
	if err != nil {
		return e, err
	}
	e.Public = public != 0
	e.Expire = parseTime(expire)
	e.CreatedAt = parseTime(created)
	return e, nil
}

func scanEventRows(rows *sql.Rows) (domain.Event, error) {
	var e domain.Event
	var public int
	var expire, created string
	err := rows.Scan(&e.ID, &e.Owner, &e.Title, &e.Description, &e.X, &e.Y, &public,
		&e.Location, &e.Reward, &e.Points, &expire, &created)
	if err != nil {
		return e, err
	}
	e.Public = public != 0
	e.Expire = parseTime(expire)
	e.CreatedAt = parseTime(created)
	return e, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
