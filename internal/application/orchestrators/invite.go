package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"time"

	"partymap/internal/domain/account"
	"partymap/internal/domain/event"
	"partymap/internal/domain/outbox"
)

// EventStoreForInvite defines the store interface needed by Invite.
type EventStoreForInvite interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
	ListInvited(ctx context.Context, eventID string) ([]string, error)
	IsInvited(ctx context.Context, eventID, userID string) (bool, error)
	AddInvite(ctx context.Context, eventID, userID string, at time.Time) error
}

// AccountLookupForInvite resolves user ids to directory details for the
// invitation email.
type AccountLookupForInvite interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// OutboxStoreForInvite queues the invitation email for background delivery.
type OutboxStoreForInvite interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// InviteInput carries input for the invite orchestrator.
type InviteInput struct {
	Actor   string
	EventID string
	Target  string // account ID to invite
}

// InviteDeps holds dependencies for Invite.
type InviteDeps struct {
	EventStore   EventStoreForInvite
	AccountStore AccountLookupForInvite
	OutboxStore  OutboxStoreForInvite
	GenerateID   func() string
	Now          func() time.Time
}

// InviteEmailPayload is the outbox payload replayed by the retry loop.
type InviteEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	EventID string `json:"event_id"`
}

// ExecuteInvite adds a user to a private event's invite list and queues an
// invitation email. Inviting the owner or an already invited user succeeds
// without mutation. Email delivery is best-effort: a queueing failure is
// logged and never surfaced to the caller.
func ExecuteInvite(ctx context.Context, input InviteInput, deps InviteDeps) error {
	if input.Actor == "" {
		return event.ErrUnauthenticated
	}
	if input.Target == "" {
		return &event.InvalidArgumentError{Field: "userId", Reason: "is required"}
	}

	e, err := deps.EventStore.GetByID(ctx, input.EventID)
	if err != nil {
		return event.ErrNotFound
	}
	if input.Actor != e.Owner {
		invited, err := deps.EventStore.ListInvited(ctx, input.EventID)
		if err != nil {
			return err
		}
		if !event.CanRead(input.Actor, e, invited) {
			return event.ErrNotFound
		}
		return event.ErrForbidden
	}
	if e.Public {
		return &event.InvalidArgumentError{Field: "eventId", Reason: "no need to invite people to a public event"}
	}

	// Inviting yourself or someone already on the list is a no-op success.
	if input.Target == e.Owner {
		return nil
	}
	already, err := deps.EventStore.IsInvited(ctx, input.EventID, input.Target)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	if err := deps.EventStore.AddInvite(ctx, input.EventID, input.Target, deps.Now()); err != nil {
		return err
	}
	slog.Info("lifecycle_event", "event", "user_invited", "event_id", input.EventID, "owner", input.Actor, "target", input.Target)

	queueInviteEmail(ctx, e, input.Actor, input.Target, deps)
	return nil
}

// queueInviteEmail records an outbox entry for the invitation email.
// Best-effort: every failure path logs and returns.
func queueInviteEmail(ctx context.Context, e event.Event, actorID, targetID string, deps InviteDeps) {
	owner, err := deps.AccountStore.GetByID(ctx, actorID)
	if err != nil {
		slog.Warn("invite_email_skipped", "reason", "owner_lookup_failed", "event_id", e.ID, "error", err)
		return
	}
	target, err := deps.AccountStore.GetByID(ctx, targetID)
	if err != nil || target.Email == "" {
		slog.Warn("invite_email_skipped", "reason", "target_has_no_email", "event_id", e.ID, "target", targetID)
		return
	}

	body := fmt.Sprintf(
		"<p>Hey, %s just invited you to <strong>%s</strong> on Partymap.</p><p>Come check it out!</p>",
		html.EscapeString(owner.DisplayName()), html.EscapeString(e.Title))
	payload, err := json.Marshal(InviteEmailPayload{
		To:      target.Email,
		Subject: fmt.Sprintf("You're invited to %s", e.Title),
		HTML:    body,
		EventID: e.ID,
	})
	if err != nil {
		slog.Warn("invite_email_skipped", "reason", "payload_marshal_failed", "event_id", e.ID, "error", err)
		return
	}

	entry := outbox.Entry{
		ID:        deps.GenerateID(),
		Kind:      outbox.KindInviteEmail,
		Payload:   string(payload),
		Status:    outbox.StatusPending,
		CreatedAt: deps.Now(),
	}
	if err := entry.Validate(); err != nil {
		slog.Warn("invite_email_skipped", "reason", "invalid_entry", "event_id", e.ID, "error", err)
		return
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		slog.Warn("invite_email_queue_failed", "event_id", e.ID, "target", targetID, "error", err)
		return
	}
	slog.Info("invite_email_queued", "event_id", e.ID, "target", targetID, "outbox_id", entry.ID)
}
