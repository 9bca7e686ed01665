package report

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"guard-monitor/backend/internal/domain/checkin"
	"guard-monitor/backend/internal/domain/employee"
)

// EventSource supplies candidate raw events; implemented by the check-in
// repo.
type EventSource interface {
	RawEvents(ctx context.Context, employeeID string) ([]checkin.RawEvent, error)
}

// EmployeeDirectory resolves employee profiles and display names;
// implemented by the employee repo.
type EmployeeDirectory interface {
	Get(ctx context.Context, uid string) (*employee.Employee, error)
	Username(ctx context.Context, uid string) (string, bool)
}

// AddressResolver turns coordinates into an address string and never
// fails; implemented by the geocode resolver.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, lat, lon float64) string
}

// Service is the report query engine. It holds only the most recent
// report: generating a new one replaces the previous state, and address
// patches still in flight for the old generation are dropped on arrival.
type Service struct {
	events    EventSource
	employees EmployeeDirectory
	resolver  AddressResolver

	mu     sync.Mutex
	states map[string]*State
}

func NewService(events EventSource, employees EmployeeDirectory, resolver AddressResolver) *Service {
	return &Service{
		events:    events,
		employees: employees,
		resolver:  resolver,
		states:    make(map[string]*State),
	}
}

// Generate runs the full pipeline: expand bounds, query, normalize,
// re-filter, sort, publish, then fan out address resolution per record.
// The returned state already contains the sorted batch with placeholder
// addresses. ErrNoResults signals an empty (but successful) report.
func (s *Service) Generate(ctx context.Context, req Request) (*State, error) {
	req.Trim()

	start, end, err := req.Bounds()
	if err != nil {
		return nil, err
	}

	var scoped *employee.Employee
	if req.EmployeeID != "" {
		emp, err := s.employees.Get(ctx, req.EmployeeID)
		if err != nil {
			// The filter still applies by id; the info box is just absent.
			log.Printf("[report] employee %s lookup failed: %v", req.EmployeeID, err)
		} else {
			scoped = emp
		}
	}

	raw, err := s.events.RawEvents(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}

	names := map[string]string{}
	records := make([]checkin.Record, 0, len(raw))
	for _, ev := range raw {
		rec, ok := checkin.Normalize(ev)
		if !ok {
			continue
		}
		// The store's native range filter is unreliable across legacy
		// timestamp shapes, so the bounds are always re-checked here.
		if rec.Timestamp.Before(start) || rec.Timestamp.After(end) {
			continue
		}
		if rec.Username == checkin.UnidentifiedUser && rec.UserID != "" {
			name, cached := names[rec.UserID]
			if !cached {
				if resolved, ok := s.employees.Username(ctx, rec.UserID); ok {
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

	if len(records) == 0 {
		return nil, ErrNoResults
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	st := &State{
		ID:        uuid.NewString(),
		Request:   req,
		Start:     start,
		End:       end,
		Employee:  scoped,
		CreatedAt: time.Now(),
	}
	st.publish(records)

	s.mu.Lock()
	// A new generation supersedes everything before it.
	s.states = map[string]*State{st.ID: st}
	s.mu.Unlock()

	// Fire-and-forget per record: a slow provider stalls only its own
	// record. Resolution outlives the request context on purpose; there is
	// no cancellation, stale completions are rejected by generation.
	for _, rec := range records {
		if rec.Location.IsZero() {
			continue
		}
		go func(generation, recordID string, loc checkin.Location) {
			address := s.resolver.ResolveAddress(context.Background(), loc.Latitude, loc.Longitude)
			s.patch(generation, recordID, address)
		}(st.ID, rec.ID, rec.Location)
	}

	return st, nil
}

// Get returns the currently held report state.
func (s *Service) Get(id string) (*State, error) {
	s.mu.Lock()
	st, ok := s.states[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	return st, nil
}

// patch applies one resolved address. Patches addressed to a superseded
// generation are discarded, which is what keeps late resolutions from a
// previous report out of the current one.
func (s *Service) patch(generation, recordID, address string) {
	s.mu.Lock()
	st, ok := s.states[generation]
	s.mu.Unlock()
	if !ok {
		return
	}
	st.applyAddress(recordID, address)
}
