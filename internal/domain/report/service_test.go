package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guard-monitor/backend/internal/domain/checkin"
	"guard-monitor/backend/internal/domain/employee"
	"guard-monitor/backend/internal/geocode"
)

type fakeEvents struct {
	events     []checkin.RawEvent
	err        error
	employeeID string
}

func (f *fakeEvents) RawEvents(_ context.Context, employeeID string) ([]checkin.RawEvent, error) {
	f.employeeID = employeeID
	return f.events, f.err
}

type fakeDirectory struct {
	employees map[string]*employee.Employee
	names     map[string]string
}

func (f *fakeDirectory) Get(_ context.Context, uid string) (*employee.Employee, error) {
	if emp, ok := f.employees[uid]; ok {
		return emp, nil
	}
	return nil, fmt.Errorf("%w: employee %s", employee.ErrNotFound, uid)
}

func (f *fakeDirectory) Username(_ context.Context, uid string) (string, bool) {
	name, ok := f.names[uid]
	return name, ok
}

type fakeResolver struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{} // when set, Resolve waits for it to close
	address string
}

func (f *fakeResolver) ResolveAddress(_ context.Context, lat, lon float64) string {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.address != "" {
		return f.address
	}
	return fmt.Sprintf("Rua %.4f, %.4f", lat, lon)
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func event(id string, ts interface{}, extra map[string]interface{}) checkin.RawEvent {
	data := map[string]interface{}{"timestamp": ts}
	for k, v := range extra {
		data[k] = v
	}
	return checkin.RawEvent{ID: id, Data: data}
}

func localTime(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.Local)
}

func TestGenerate_FiltersNormalizesAndSorts(t *testing.T) {
	events := &fakeEvents{events: []checkin.RawEvent{
		event("old", localTime(9, 12), nil),   // before the window
		event("mid", localTime(11, 9), nil),   // in range
		event("late", localTime(12, 18), nil), // in range, newest
		event("early", localTime(10, 7), nil), // in range, oldest
		event("bad", "not-a-date", nil),       // undecodable, dropped
	}}
	svc := NewService(events, &fakeDirectory{}, &fakeResolver{})

	st, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-10", EndDate: "2024-03-12"})
	require.NoError(t, err)
	require.NotNil(t, st)

	records := st.Snapshot()
	require.Len(t, records, 3)
	assert.Equal(t, "late", records[0].ID)
	assert.Equal(t, "mid", records[1].ID)
	assert.Equal(t, "early", records[2].ID)
	assert.Empty(t, events.employeeID)
}

func TestGenerate_BoundsAreInclusive(t *testing.T) {
	atStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	atEnd := time.Date(2024, 3, 10, 23, 59, 59, 0, time.Local)
	dayAfter := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)

	events := &fakeEvents{events: []checkin.RawEvent{
		event("start", atStart, nil),
		event("end", atEnd, nil),
		event("after", dayAfter, nil),
	}}
	svc := NewService(events, &fakeDirectory{}, &fakeResolver{})

	st, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-10", EndDate: "2024-03-10"})
	require.NoError(t, err)

	records := st.Snapshot()
	require.Len(t, records, 2)
	assert.Equal(t, "end", records[0].ID)
	assert.Equal(t, "start", records[1].ID)
}

func TestGenerate_EmptyWindowIsNoResults(t *testing.T) {
	events := &fakeEvents{events: []checkin.RawEvent{
		event("old", localTime(1, 8), nil),
	}}
	svc := NewService(events, &fakeDirectory{}, &fakeResolver{})

	st, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-10", EndDate: "2024-03-12"})
	assert.Nil(t, st)
	assert.True(t, IsErrNoResults(err))
}

func TestGenerate_QueryFailureIsNotNoResults(t *testing.T) {
	events := &fakeEvents{err: errors.New("store unavailable")}
	svc := NewService(events, &fakeDirectory{}, &fakeResolver{})

	_, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-10", EndDate: "2024-03-12"})
	require.Error(t, err)
	assert.False(t, IsErrNoResults(err))
	assert.Contains(t, err.Error(), "failed to query check-ins")
}

func TestGenerate_BadDates(t *testing.T) {
	svc := NewService(&fakeEvents{}, &fakeDirectory{}, &fakeResolver{})

	tests := []struct {
		name string
		req  Request
	}{
		{"missing dates", Request{}},
		{"invalid start", Request{StartDate: "10/03/2024", EndDate: "2024-03-12"}},
		{"end before start", Request{StartDate: "2024-03-12", EndDate: "2024-03-10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			assert.True(t, IsErrBadRequest(err))
		})
	}
}

func TestGenerate_UsernameEnrichment(t *testing.T) {
	dir := &fakeDirectory{names: map[string]string{"u1": "Carlos Silva"}}
	events := &fakeEvents{events: []checkin.RawEvent{
		event("a", localTime(11, 9), map[string]interface{}{"userId": "u1"}),
		event("b", localTime(11, 10), map[string]interface{}{"userId": "u1"}),
		event("c", localTime(11, 11), map[string]interface{}{"userId": "ghost"}),
	}}
	svc := NewService(events, dir, &fakeResolver{})

	st, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-11", EndDate: "2024-03-11"})
	require.NoError(t, err)

	records := st.Snapshot()
	require.Len(t, records, 3)
	assert.Equal(t, checkin.UnidentifiedUser, records[0].Username) // ghost
	assert.Equal(t, "Carlos Silva", records[1].Username)
	assert.Equal(t, "Carlos Silva", records[2].Username)
}

func TestGenerate_ScopedEmployeeLookup(t *testing.T) {
	emp := &employee.Employee{ID: "u1", Username: "Carlos Silva", Role: "vigia"}
	dir := &fakeDirectory{employees: map[string]*employee.Employee{"u1": emp}}
	events := &fakeEvents{events: []checkin.RawEvent{
		event("a", localTime(11, 9), map[string]interface{}{"userId": "u1"}),
	}}
	svc := NewService(events, dir, &fakeResolver{})

	st, err := svc.Generate(context.Background(), Request{
		StartDate: "2024-03-11", EndDate: "2024-03-11", EmployeeID: "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, st.Employee)
	assert.Equal(t, "Carlos Silva", st.Employee.Username)
	assert.Equal(t, "u1", events.employeeID)
}

func TestGenerate_EmployeeLookupFailureIsNotFatal(t *testing.T) {
	events := &fakeEvents{events: []checkin.RawEvent{
		event("a", localTime(11, 9), map[string]interface{}{"userId": "missing"}),
	}}
	svc := NewService(events, &fakeDirectory{}, &fakeResolver{})

	st, err := svc.Generate(context.Background(), Request{
		StartDate: "2024-03-11", EndDate: "2024-03-11", EmployeeID: "missing",
	})
	require.NoError(t, err)
	assert.Nil(t, st.Employee)
}

func TestGenerate_AddressesPatchInPlace(t *testing.T) {
	located := map[string]interface{}{"latitude": -23.5, "longitude": -46.6}
	events := &fakeEvents{events: []checkin.RawEvent{
		event("a", localTime(11, 9), located),
		event("b", localTime(11, 10), located),
		event("nowhere", localTime(11, 11), nil), // no coordinates, never resolved
	}}
	resolver := &fakeResolver{address: "Av. Paulista, 1000"}
	svc := NewService(events, &fakeDirectory{}, resolver)

	st, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-11", EndDate: "2024-03-11"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		records := st.Snapshot()
		return records[1].Address == "Av. Paulista, 1000" && records[2].Address == "Av. Paulista, 1000"
	}, 2*time.Second, 10*time.Millisecond)

	records := st.Snapshot()
	assert.Equal(t, checkin.AddressPending, records[0].Address) // "nowhere" keeps the placeholder
	assert.Equal(t, "nowhere", records[0].ID)                   // ordering untouched by patches
	assert.Equal(t, 2, resolver.callCount())
}

func TestGenerate_ExhaustedProvidersLeaveFallbackAddress(t *testing.T) {
	located := map[string]interface{}{"latitude": -23.5, "longitude": -46.6}
	events := &fakeEvents{events: []checkin.RawEvent{event("a", localTime(11, 9), located)}}

	// An empty provider chain resolves straight to the coordinate fallback.
	svc := NewService(events, &fakeDirectory{}, geocode.NewResolverWithProviders())

	st, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-11", EndDate: "2024-03-11"})
	require.NoError(t, err)

	want := geocode.FallbackAddress(-23.5, -46.6)
	assert.Eventually(t, func() bool {
		return st.Snapshot()[0].Address == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPatch_StaleGenerationIsDropped(t *testing.T) {
	located := map[string]interface{}{"latitude": -23.5, "longitude": -46.6}
	gate := make(chan struct{})
	resolver := &fakeResolver{block: gate, address: "Rua Antiga, 1"}

	events := &fakeEvents{events: []checkin.RawEvent{event("a", localTime(11, 9), located)}}
	svc := NewService(events, &fakeDirectory{}, resolver)

	first, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-11", EndDate: "2024-03-11"})
	require.NoError(t, err)

	// A second generation supersedes the first while its resolution is
	// still blocked in flight.
	second, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-11", EndDate: "2024-03-11"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	close(gate)

	// The patch addressed to the first generation must not land anywhere,
	// and the first state keeps its placeholder.
	assert.Eventually(t, func() bool {
		return resolver.callCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = svc.Get(first.ID)
	assert.True(t, IsErrNotFound(err))
	assert.Equal(t, checkin.AddressPending, first.Snapshot()[0].Address)
}

func TestGet(t *testing.T) {
	events := &fakeEvents{events: []checkin.RawEvent{event("a", localTime(11, 9), nil)}}
	svc := NewService(events, &fakeDirectory{}, &fakeResolver{})

	st, err := svc.Generate(context.Background(), Request{StartDate: "2024-03-11", EndDate: "2024-03-11"})
	require.NoError(t, err)

	got, err := svc.Get(st.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)

	_, err = svc.Get("nope")
	assert.True(t, IsErrNotFound(err))
}
