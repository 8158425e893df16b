package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	domainEvent "partymap/internal/domain/event"
)

func getEventFixture() *mockVisibleEventStore {
	store := visibleFixture()
	store.participants["inv"] = []domainEvent.Participant{
		{User: "u2", Response: domainEvent.ResponseMaybe},
	}
	return store
}

func getEventDeps(store *mockVisibleEventStore) GetEventDeps {
	return GetEventDeps{EventStore: store, Now: func() time.Time { return projNow }}
}

// TestQueryGetEvent_OwnerView verifies the owner sees the invite list.
func TestQueryGetEvent_OwnerView(t *testing.T) {
	store := getEventFixture()

	res, err := QueryGetEvent(context.Background(), GetEventQuery{Viewer: "u1", EventID: "inv"}, getEventDeps(store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.CanEdit {
		t.Error("owner should be able to edit")
	}
	if len(res.Invited) != 1 || res.Invited[0] != "u2" {
		t.Errorf("owner should see the invite list, got %v", res.Invited)
	}
}

// TestQueryGetEvent_InviteeView verifies an invitee sees the event but not
// the invite list, and gets their own response back.
func TestQueryGetEvent_InviteeView(t *testing.T) {
	store := getEventFixture()

	res, err := QueryGetEvent(context.Background(), GetEventQuery{Viewer: "u2", EventID: "inv"}, getEventDeps(store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CanEdit {
		t.Error("invitee must not be able to edit")
	}
	if res.Invited != nil {
		t.Errorf("invite list is owner-only, got %v", res.Invited)
	}
	if res.MyResponse != domainEvent.ResponseMaybe {
		t.Errorf("MyResponse=%q want maybe", res.MyResponse)
	}
}

// TestQueryGetEvent_Hidden verifies invisibility maps to NotFound.
func TestQueryGetEvent_Hidden(t *testing.T) {
	store := getEventFixture()
	ctx := context.Background()

	_, err := QueryGetEvent(ctx, GetEventQuery{Viewer: "u2", EventID: "hidden"}, getEventDeps(store))
	if !errors.Is(err, domainEvent.ErrNotFound) {
		t.Errorf("expected ErrNotFound for uninvited viewer, got %v", err)
	}
	_, err = QueryGetEvent(ctx, GetEventQuery{Viewer: "u2", EventID: "missing"}, getEventDeps(store))
	if !errors.Is(err, domainEvent.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing event, got %v", err)
	}
	if errors.Is(err, domainEvent.ErrForbidden) {
		t.Error("visibility must never surface as Forbidden")
	}
}

// TestQueryGetEvent_AnonymousPublic verifies visitors can open public events.
func TestQueryGetEvent_AnonymousPublic(t *testing.T) {
	store := getEventFixture()

	res, err := QueryGetEvent(context.Background(), GetEventQuery{EventID: "pub"}, getEventDeps(store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CanEdit || res.MyResponse != "" || res.Invited != nil {
		t.Errorf("anonymous view should carry no viewer-specific state: %+v", res)
	}
	if len(res.Participants) != 2 {
		t.Errorf("participants=%d want 2", len(res.Participants))
	}
}
