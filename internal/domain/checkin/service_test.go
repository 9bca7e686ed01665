package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	names   map[string]string
	lookups int
}

func (f *fakeDirectory) Username(_ context.Context, uid string) (string, bool) {
	f.lookups++
	name, ok := f.names[uid]
	return name, ok
}

func TestReconcile_SortsAndEnriches(t *testing.T) {
	dir := &fakeDirectory{names: map[string]string{"u1": "Carlos Silva"}}
	svc := NewService(nil, dir)

	events := []RawEvent{
		{ID: "a", Data: map[string]interface{}{"timestamp": int64(1710150000000), "userId": "u1"}},
		{ID: "b", Data: map[string]interface{}{"timestamp": int64(1710250000000), "userId": "u1"}},
		{ID: "c", Data: map[string]interface{}{"timestamp": "sem data"}},
		{ID: "d", Data: map[string]interface{}{"timestamp": int64(1710200000000), "username": "Portaria Norte"}},
	}

	records := svc.reconcile(context.Background(), events)
	require.Len(t, records, 3)

	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "d", records[1].ID)
	assert.Equal(t, "a", records[2].ID)

	assert.Equal(t, "Carlos Silva", records[0].Username)
	assert.Equal(t, "Portaria Norte", records[1].Username)
	assert.Equal(t, "Carlos Silva", records[2].Username)

	// Directory hit once per distinct uid, not per event.
	assert.Equal(t, 1, dir.lookups)
}

func TestReconcile_UnknownUserKeepsSentinel(t *testing.T) {
	svc := NewService(nil, &fakeDirectory{})

	records := svc.reconcile(context.Background(), []RawEvent{
		{ID: "a", Data: map[string]interface{}{"timestamp": int64(1710150000000), "userId": "ghost"}},
	})
	require.Len(t, records, 1)
	assert.Equal(t, UnidentifiedUser, records[0].Username)
}

func TestReconcile_StableOrderForEqualTimestamps(t *testing.T) {
	svc := NewService(nil, &fakeDirectory{})
	ts := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	records := svc.reconcile(context.Background(), []RawEvent{
		{ID: "first", Data: map[string]interface{}{"timestamp": ts}},
		{ID: "second", Data: map[string]interface{}{"timestamp": ts}},
	})
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].ID)
	assert.Equal(t, "second", records[1].ID)
}
