package checkin

import (
	"context"
	"sort"
	"time"
)

// UserDirectory resolves an employee id to a display name. Implemented by
// the employee repo; kept as an interface so feed tests can fake it.
type UserDirectory interface {
	Username(ctx context.Context, uid string) (string, bool)
}

type Service struct {
	repo  *Repo
	users UserDirectory
}

func NewService(repo *Repo, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// reconcile normalizes a batch, fills in usernames from the directory and
// sorts newest first. Events without a decodable timestamp are dropped.
func (s *Service) reconcile(ctx context.Context, events []RawEvent) []Record {
	names := map[string]string{}
	records := make([]Record, 0, len(events))

	for _, ev := range events {
		rec, ok := Normalize(ev)
		if !ok {
			continue
		}
		if rec.Username == UnidentifiedUser && rec.UserID != "" && s.users != nil {
			name, cached := names[rec.UserID]
			if !cached {
				if resolved, ok := s.users.Username(ctx, rec.UserID); ok {
					name = resolved
				}
				names[rec.UserID] = name
			}
			if name != "" {
				rec.Username = name
			}
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records
}

// Recent returns the newest reconciled check-ins for the dashboard feed.
func (s *Service) Recent(ctx context.Context, employeeID string, limit int) ([]Record, error) {
	events, err := s.repo.Recent(ctx, employeeID, limit)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, events), nil
}

// Stats returns the overview counters and the latest check-in.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.repo.CountSince(ctx, midnight)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TodayCount: today, TotalCount: total}

	latest, err := s.repo.Recent(ctx, "", 1)
	if err != nil {
		return nil, err
	}
	if recs := s.reconcile(ctx, latest); len(recs) > 0 {
		stats.Latest = &recs[0]
	}

	return stats, nil
}

// Stream delivers reconciled snapshots to fn on every store change until
// ctx is cancelled.
func (s *Service) Stream(ctx context.Context, limit int, fn func([]Record)) error {
	return s.repo.Listen(ctx, limit, func(events []RawEvent) {
		fn(s.reconcile(ctx, events))
	})
}
