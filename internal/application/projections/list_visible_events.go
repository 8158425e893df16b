package projections

import (
	"context"
	"time"
)

// ListVisibleEventsQuery carries query parameters. An empty Viewer means an
// anonymous visitor.
type ListVisibleEventsQuery struct {
	Viewer string
}

// EventSummary is one map pin.
type EventSummary struct {
	ID          string
	Owner       string
	Title       string
	X           float64
	Y           float64
	Public      bool
	Points      int
	Location    string
	Reward      string
	HelperCount int
	Expired     bool
	Mine        bool
}

// ListVisibleEventsResult carries the query result.
type ListVisibleEventsResult struct {
	Events []EventSummary
}

// ListVisibleEventsDeps holds dependencies for ListVisibleEvents.
type ListVisibleEventsDeps struct {
	EventStore EventStore
	Now        func() time.Time
}

// QueryListVisibleEvents retrieves the events the viewer may see, newest
// first, with helper counts for sizing the map pins.
// POST: anonymous viewers receive public events only
// INVARIANT: no private event outside the viewer's owner/invite set appears
func QueryListVisibleEvents(ctx context.Context, query ListVisibleEventsQuery, deps ListVisibleEventsDeps) (ListVisibleEventsResult, error) {
	events, err := deps.EventStore.ListVisibleTo(ctx, query.Viewer)
	if err != nil {
		return ListVisibleEventsResult{}, err
	}

	now := deps.Now()
	summaries := make([]EventSummary, 0, len(events))
	for _, e := range events {
		count, err := deps.EventStore.CountParticipants(ctx, e.ID)
		if err != nil {
			return ListVisibleEventsResult{}, err
		}
		summaries = append(summaries, EventSummary{
			ID:          e.ID,
			Owner:       e.Owner,
			Title:       e.Title,
			X:           e.X,
			Y:           e.Y,
			Public:      e.Public,
			Points:      e.Points,
			Location:    e.Location,
			Reward:      e.Reward,
			HelperCount: count,
			Expired:     e.IsExpired(now),
			Mine:        query.Viewer != "" && e.Owner == query.Viewer,
		})
	}

	return ListVisibleEventsResult{Events: summaries}, nil
}
