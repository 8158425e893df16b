package orchestrators

import (
	"context"
	"errors"
	"sort"
	"time"

	"partymap/internal/adapters/email"
	"partymap/internal/domain/account"
	"partymap/internal/domain/event"
	"partymap/internal/domain/outbox"
)

var fixedTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

var errMockNotFound = errors.New("not found")

// mockEventStore is an in-memory event store for orchestrator tests.
type mockEventStore struct {
	events       map[string]event.Event
	participants map[string]map[string]event.Participant // eventID -> userID -> record
	invites      map[string]map[string]bool              // eventID -> userID
	failWith     error                                   // when set, every call errors
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{
		events:       make(map[string]event.Event),
		participants: make(map[string]map[string]event.Participant),
		invites:      make(map[string]map[string]bool),
	}
}

func (m *mockEventStore) Create(_ context.Context, e event.Event) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.events[e.ID] = e
	return nil
}

func (m *mockEventStore) GetByID(_ context.Context, id string) (event.Event, error) {
	if m.failWith != nil {
		return event.Event{}, m.failWith
	}
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, errMockNotFound
	}
	return e, nil
}

func (m *mockEventStore) Update(_ context.Context, e event.Event) error {
	if m.failWith != nil {
		return m.failWith
	}
	// Owner and CreatedAt are immutable in the real UPDATE statement.
	existing := m.events[e.ID]
	e.Owner = existing.Owner
	e.CreatedAt = existing.CreatedAt
	m.events[e.ID] = e
	return nil
}

func (m *mockEventStore) DeleteIfNoParticipants(_ context.Context, id string) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	if len(m.participants[id]) > 0 {
		return false, nil
	}
	if _, ok := m.events[id]; !ok {
		return false, nil
	}
	delete(m.events, id)
	delete(m.invites, id)
	return true, nil
}

func (m *mockEventStore) AddParticipant(_ context.Context, eventID, userID, response string, at time.Time) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	if m.participants[eventID] == nil {
		m.participants[eventID] = make(map[string]event.Participant)
	}
	if _, ok := m.participants[eventID][userID]; ok {
		return false, nil
	}
	m.participants[eventID][userID] = event.Participant{User: userID, Response: response, CreatedAt: at}
	return true, nil
}

func (m *mockEventStore) RemoveParticipant(_ context.Context, eventID, userID string) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	if _, ok := m.participants[eventID][userID]; !ok {
		return false, nil
	}
	delete(m.participants[eventID], userID)
	return true, nil
}

func (m *mockEventStore) UpsertRSVP(_ context.Context, eventID, userID, response string, at time.Time) error {
	if m.failWith != nil {
		return m.failWith
	}
	if m.participants[eventID] == nil {
		m.participants[eventID] = make(map[string]event.Participant)
	}
	p, ok := m.participants[eventID][userID]
	if !ok {
		p = event.Participant{User: userID, CreatedAt: at}
	}
	p.Response = response
	m.participants[eventID][userID] = p
	return nil
}

func (m *mockEventStore) CountParticipants(_ context.Context, eventID string) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	return len(m.participants[eventID]), nil
}

func (m *mockEventStore) AddInvite(_ context.Context, eventID, userID string, _ time.Time) error {
	if m.failWith != nil {
		return m.failWith
	}
	if m.invites[eventID] == nil {
		m.invites[eventID] = make(map[string]bool)
	}
	m.invites[eventID][userID] = true
	return nil
}

func (m *mockEventStore) ListInvited(_ context.Context, eventID string) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var users []string
	for u := range m.invites[eventID] {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

func (m *mockEventStore) IsInvited(_ context.Context, eventID, userID string) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	return m.invites[eventID][userID], nil
}

// mockAccountStore is an in-memory account store for orchestrator tests.
type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errMockNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errMockNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

// mockOutboxStore is an in-memory outbox for orchestrator tests.
type mockOutboxStore struct {
	entries  map[string]outbox.Entry
	failWith error
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outbox.Entry)}
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var pending []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// mockSender records sends and can be told to fail.
type mockSender struct {
	sent     []email.SendRequest
	failWith error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.failWith != nil {
		return email.SendResult{}, m.failWith
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-001", SentAt: fixedTime}, nil
}

// seedEvent drops a valid event straight into the mock store.
func seedEvent(m *mockEventStore, id, owner string, public bool) event.Event {
	e := event.Event{
		ID:          id,
		Owner:       owner,
		Title:       "Fence painting bee",
		Description: "Bring a brush, paint provided",
		X:           0.3,
		Y:           0.7,
		Public:      public,
		CreatedAt:   fixedTime,
	}
	m.events[id] = e
	return e
}
