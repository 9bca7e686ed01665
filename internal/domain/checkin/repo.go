package checkin

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const collectionName = "checkIns"

type Repo struct {
	client *firestore.Client
}

func NewRepo(client *firestore.Client) *Repo {
	return &Repo{client: client}
}

func (r *Repo) col() *firestore.CollectionRef {
	return r.client.Collection(collectionName)
}

// RawEvents fetches candidate events for a report. Only the employee filter
// is pushed down to the store: legacy records carry timestamp shapes its
// native range filter cannot evaluate consistently, so the date predicate
// is applied by the caller after normalization. The unscoped case is a full
// collection scan, which is an accepted cost for report generation.
func (r *Repo) RawEvents(ctx context.Context, employeeID string) ([]RawEvent, error) {
	query := r.col().Query
	if employeeID != "" {
		query = query.Where("userId", "==", employeeID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var events []RawEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list check-ins: %w", err)
		}
		events = append(events, RawEvent{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return events, nil
}

// Recent returns the newest events by store ordering, for the live feed.
func (r *Repo) Recent(ctx context.Context, employeeID string, limit int) ([]RawEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	query := r.col().Query
	if employeeID != "" {
		query = query.Where("userId", "==", employeeID)
	}
	query = query.OrderBy("timestamp", firestore.Desc).Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var events []RawEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list recent check-ins: %w", err)
		}
		events = append(events, RawEvent{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return events, nil
}

// CountSince counts events at or after the cutoff.
func (r *Repo) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	iter := r.col().Where("timestamp", ">=", cutoff).Documents(ctx)
	defer iter.Stop()

	n := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count check-ins: %w", err)
		}
		n++
	}
	return n, nil
}

// CountAll counts every event in the collection.
func (r *Repo) CountAll(ctx context.Context) (int, error) {
	iter := r.col().Documents(ctx)
	defer iter.Stop()

	n := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count check-ins: %w", err)
		}
		n++
	}
	return n, nil
}

// Listen pushes the newest events to fn on every collection change until
// ctx is cancelled. It backs the live dashboard feed.
func (r *Repo) Listen(ctx context.Context, limit int, fn func([]RawEvent)) error {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	snaps := r.col().OrderBy("timestamp", firestore.Desc).Limit(limit).Snapshots(ctx)
	defer snaps.Stop()

	for {
		snap, err := snaps.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("check-in listener failed: %w", err)
		}

		var events []RawEvent
		iter := snap.Documents
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("check-in listener failed: %w", err)
			}
			events = append(events, RawEvent{ID: doc.Ref.ID, Data: doc.Data()})
		}
		fn(events)
	}
}
