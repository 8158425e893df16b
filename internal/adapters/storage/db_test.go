package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestInitDB_CreatesTables verifies the full schema appears on a fresh database.
func TestInitDB_CreatesTables(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	want := []string{"account", "event", "invite", "outbox", "participant"}
	got := getTableNames(t, db)
	if len(got) != len(want) {
		t.Fatalf("expected tables %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// TestInitDB_Idempotent verifies InitDB can run twice without error.
func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}

// TestInitDB_ParticipantUniquePerUser verifies the one-record-per-user constraint.
func TestInitDB_ParticipantUniquePerUser(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO event (id, owner, title, description, x, y, created_at) VALUES ('e1','u1','t','d',0.5,0.5,'2026-05-01')`); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO participant (event_id, user_id, response, created_at) VALUES ('e1','u2','yes','2026-05-01')`); err != nil {
		t.Fatalf("insert participant: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO participant (event_id, user_id, response, created_at) VALUES ('e1','u2','maybe','2026-05-01')`); err == nil {
		t.Fatal("expected unique violation for duplicate participant")
	}
}
