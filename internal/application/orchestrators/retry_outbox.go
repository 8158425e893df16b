package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"partymap/internal/adapters/email"
	"partymap/internal/domain/outbox"
)

// OutboxStoreForRetry defines the store interface needed by the retry loop.
type OutboxStoreForRetry interface {
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
}

// Backoff bounds for outbox retries.
const (
	outboxBaseDelay = 30 * time.Second
	outboxMaxDelay  = 30 * time.Minute
	outboxBatchSize = 20
)

// RetryOutboxDeps holds dependencies for the outbox retry pass.
type RetryOutboxDeps struct {
	OutboxStore OutboxStoreForRetry
	Sender      email.Sender
	Now         func() time.Time
}

// RetryOutboxResult summarizes one pass over the outbox.
type RetryOutboxResult struct {
	Attempted int
	Delivered int
	Failed    int
}

// ExecuteRetryOutbox makes one delivery pass over pending entries. Entries
// still inside their backoff window are skipped. Delivery failures update
// the entry and are never returned as errors; the pass itself only fails
// when the store does.
func ExecuteRetryOutbox(ctx context.Context, deps RetryOutboxDeps) (RetryOutboxResult, error) {
	var result RetryOutboxResult

	entries, err := deps.OutboxStore.ListPending(ctx, outboxBatchSize)
	if err != nil {
		return result, err
	}

	now := deps.Now()
	for _, entry := range entries {
		if !entry.CanRetry() {
			continue
		}
		if !entry.LastAttemptAt.IsZero() &&
			now.Sub(entry.LastAttemptAt) < entry.NextRetryDelay(outboxBaseDelay, outboxMaxDelay) {
			continue
		}

		entry.MarkAttempt(now)
		result.Attempted++

		var payload InviteEmailPayload
		if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
			// Unreplayable payload: burn the remaining attempts.
			entry.Attempts = entry.MaxAttempts
			entry.MarkFailed(err)
			result.Failed++
			if err := deps.OutboxStore.Save(ctx, entry); err != nil {
				return result, err
			}
			continue
		}

		sent, err := deps.Sender.Send(ctx, email.SendRequest{
			To:      []string{payload.To},
			Subject: payload.Subject,
			HTML:    payload.HTML,
		})
		if err != nil {
			entry.MarkFailed(err)
			result.Failed++
			slog.Warn("outbox_delivery_failed", "outbox_id", entry.ID, "attempts", entry.Attempts, "error", err)
		} else {
			entry.MarkDelivered(sent.MessageID)
			result.Delivered++
			slog.Info("outbox_delivered", "outbox_id", entry.ID, "message_id", sent.MessageID)
		}
		if err := deps.OutboxStore.Save(ctx, entry); err != nil {
			return result, err
		}
	}

	return result, nil
}

// RunOutboxLoop runs delivery passes on a ticker until ctx is cancelled.
// Intended to be started as a goroutine from main.
func RunOutboxLoop(ctx context.Context, interval time.Duration, deps RetryOutboxDeps) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := ExecuteRetryOutbox(ctx, deps); err != nil {
				slog.Error("outbox_pass_failed", "error", err)
			}
		}
	}
}
