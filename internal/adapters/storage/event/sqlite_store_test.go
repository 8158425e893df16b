package event

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"partymap/internal/adapters/storage"
	domain "partymap/internal/domain/event"
)

// openTestStore creates a store over an in-memory database.
// A single connection is used so every goroutine sees the same memory db.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

var testTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func testEvent(id, owner string) domain.Event {
	return domain.Event{
		ID:          id,
		Owner:       owner,
		Title:       "Garage sale setup",
		Description: "Helping hands wanted for an hour of carrying",
		X:           0.4,
		Y:           0.6,
		Public:      true,
		Location:    "43 Ponsonby Rd",
		Reward:      "Coffee",
		Points:      5,
		CreatedAt:   testTime,
	}
}

// TestSQLiteStore_CreateGetRoundTrip tests that a stored event reads back unchanged.
func TestSQLiteStore_CreateGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := testEvent("e1", "u1")
	e.Expire = testTime.Add(48 * time.Hour)
	if err := s.Create(ctx, e); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Owner != "u1" || got.Title != e.Title || got.Description != e.Description {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.X != 0.4 || got.Y != 0.6 || !got.Public || got.Points != 5 {
		t.Errorf("unexpected event values: %+v", got)
	}
	if !got.Expire.Equal(e.Expire) {
		t.Errorf("expire round trip: expected %v, got %v", e.Expire, got.Expire)
	}
}

// TestSQLiteStore_GetByID_Missing tests the not-found path.
func TestSQLiteStore_GetByID_Missing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetByID(context.Background(), "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestSQLiteStore_Update_LeavesOwnerAlone tests that Update never touches owner.
func TestSQLiteStore_Update_LeavesOwnerAlone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, testEvent("e1", "u1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	e, _ := s.GetByID(ctx, "e1")
	e.Title = "Updated title"
	e.Owner = "hijacker" // must be ignored by the UPDATE statement
	if err := s.Update(ctx, e); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := s.GetByID(ctx, "e1")
	if got.Title != "Updated title" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if got.Owner != "u1" {
		t.Errorf("owner must be immutable, got %q", got.Owner)
	}
}

// TestSQLiteStore_AddParticipant tests the add-if-absent contract.
func TestSQLiteStore_AddParticipant(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, testEvent("e1", "u1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	added, err := s.AddParticipant(ctx, "e1", "u2", domain.ResponseYes, testTime)
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = s.AddParticipant(ctx, "e1", "u2", domain.ResponseYes, testTime)
	if err != nil {
		t.Fatalf("second add errored: %v", err)
	}
	if added {
		t.Error("second add should report already present")
	}

	n, _ := s.CountParticipants(ctx, "e1")
	if n != 1 {
		t.Errorf("expected 1 participant, got %d", n)
	}
}

// TestSQLiteStore_RemoveParticipant tests removal by exact identity.
func TestSQLiteStore_RemoveParticipant(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, testEvent("e1", "u1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	s.AddParticipant(ctx, "e1", "u2", domain.ResponseYes, testTime)
	s.AddParticipant(ctx, "e1", "u3", domain.ResponseYes, testTime.Add(time.Minute))

	removed, err := s.RemoveParticipant(ctx, "e1", "u2")
	if err != nil || !removed {
		t.Fatalf("remove: removed=%v err=%v", removed, err)
	}
	removed, _ = s.RemoveParticipant(ctx, "e1", "u2")
	if removed {
		t.Error("second remove should report not present")
	}

	parts, _ := s.ListParticipants(ctx, "e1")
	if len(parts) != 1 || parts[0].User != "u3" {
		t.Errorf("expected only u3 left, got %+v", parts)
	}
}

// TestSQLiteStore_UpsertRSVP tests overwrite-in-place semantics.
func TestSQLiteStore_UpsertRSVP(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, testEvent("e1", "u1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.UpsertRSVP(ctx, "e1", "u2", domain.ResponseMaybe, testTime); err != nil {
		t.Fatalf("first rsvp: %v", err)
	}
	if err := s.UpsertRSVP(ctx, "e1", "u2", domain.ResponseYes, testTime.Add(time.Hour)); err != nil {
		t.Fatalf("second rsvp: %v", err)
	}

	parts, _ := s.ListParticipants(ctx, "e1")
	if len(parts) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(parts))
	}
	if parts[0].User != "u2" || parts[0].Response != domain.ResponseYes {
		t.Errorf("expected u2/yes, got %+v", parts[0])
	}
}

// TestSQLiteStore_DeleteIfNoParticipants tests the delete guard.
func TestSQLiteStore_DeleteIfNoParticipants(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, testEvent("e1", "u1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	s.AddParticipant(ctx, "e1", "u2", domain.ResponseYes, testTime)

	deleted, err := s.DeleteIfNoParticipants(ctx, "e1")
	if err != nil {
		t.Fatalf("guarded delete errored: %v", err)
	}
	if deleted {
		t.Error("delete should be blocked while helpers exist")
	}

	s.RemoveParticipant(ctx, "e1", "u2")
	deleted, err = s.DeleteIfNoParticipants(ctx, "e1")
	if err != nil || !deleted {
		t.Fatalf("delete after last helper left: deleted=%v err=%v", deleted, err)
	}
	if _, err := s.GetByID(ctx, "e1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected event gone, got %v", err)
	}
}

// TestSQLiteStore_Invites tests invite dedupe and lookups.
func TestSQLiteStore_Invites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e := testEvent("e1", "u1")
	e.Public = false
	if err := s.Create(ctx, e); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.AddInvite(ctx, "e1", "u2", testTime); err != nil {
		t.Fatalf("AddInvite failed: %v", err)
	}
	if err := s.AddInvite(ctx, "e1", "u2", testTime); err != nil {
		t.Fatalf("duplicate AddInvite should be a no-op, got %v", err)
	}

	invited, _ := s.ListInvited(ctx, "e1")
	if len(invited) != 1 || invited[0] != "u2" {
		t.Errorf("expected [u2], got %v", invited)
	}
	ok, _ := s.IsInvited(ctx, "e1", "u2")
	if !ok {
		t.Error("u2 should be invited")
	}
	ok, _ = s.IsInvited(ctx, "e1", "u3")
	if ok {
		t.Error("u3 should not be invited")
	}
}

// TestSQLiteStore_ListVisibleTo tests the publish query per viewer.
func TestSQLiteStore_ListVisibleTo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pub := testEvent("pub", "a")
	if err := s.Create(ctx, pub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	priv := testEvent("priv", "a")
	priv.Public = false
	priv.CreatedAt = testTime.Add(time.Minute)
	if err := s.Create(ctx, priv); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	s.AddInvite(ctx, "priv", "b", testTime)

	ids := func(viewer string) map[string]bool {
		events, err := s.ListVisibleTo(ctx, viewer)
		if err != nil {
			t.Fatalf("ListVisibleTo(%q) failed: %v", viewer, err)
		}
		m := make(map[string]bool)
		for _, e := range events {
			m[e.ID] = true
		}
		return m
	}

	if got := ids("a"); !got["pub"] || !got["priv"] {
		t.Errorf("owner should see both, got %v", got)
	}
	if got := ids("b"); !got["pub"] || !got["priv"] {
		t.Errorf("invitee should see both, got %v", got)
	}
	if got := ids("c"); !got["pub"] || got["priv"] {
		t.Errorf("stranger should see public only, got %v", got)
	}
	if got := ids(""); !got["pub"] || got["priv"] {
		t.Errorf("anonymous should see public only, got %v", got)
	}
}

// TestSQLiteStore_ConcurrentJoins tests that two distinct actors joining at
// once both land exactly once each.
func TestSQLiteStore_ConcurrentJoins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, testEvent("e1", "u1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]bool, 2)
	errs := make([]error, 2)
	for i, user := range []string{"u2", "u3"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			results[i], errs[i] = s.AddParticipant(ctx, "e1", user, domain.ResponseYes, testTime)
		}(i, user)
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("join %d errored: %v", i, errs[i])
		}
		if !results[i] {
			t.Errorf("join %d should have succeeded", i)
		}
	}
	n, _ := s.CountParticipants(ctx, "e1")
	if n != 2 {
		t.Errorf("expected 2 participants, got %d", n)
	}
}
