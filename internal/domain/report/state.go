package report

import (
	"sync"
	"time"

	"guard-monitor/backend/internal/domain/checkin"
	"guard-monitor/backend/internal/domain/employee"
)

// State is one generated report held in memory. Records are published
// sorted and then patched in place as addresses resolve; the ID doubles as
// the generation identity that stale patches are checked against.
type State struct {
	ID        string             `json:"id"`
	Request   Request            `json:"request"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Employee  *employee.Employee `json:"employee,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`

	mu      sync.RWMutex
	records []checkin.Record
}

// Snapshot returns a copy of the current records. Callers render or export
// whatever has resolved by now; they never wait for in-flight addresses.
func (s *State) Snapshot() []checkin.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]checkin.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *State) publish(records []checkin.Record) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// applyAddress patches a single record's address by identity. Ordering and
// every other record are left untouched; a record that no longer exists is
// a no-op.
func (s *State) applyAddress(recordID, address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == recordID {
			s.records[i].Address = address
			return true
		}
	}
	return false
}
