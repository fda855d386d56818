// Package store persists generated schedules and enforces at most one
// active schedule per microgrid and date. The scheduling core never touches
// a store; serialization responsibility lives at this boundary.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/microgrid/core/model"
)

// ErrNotFound is returned when no active schedule exists for a key.
var ErrNotFound = errors.New("schedule not found")

// DateKey normalizes a timestamp to its calendar day.
func DateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// ScheduleStore persists schedules. Save assigns ID and CreatedAt and
// replaces any previously active schedule for the same microgrid and date.
type ScheduleStore interface {
	Save(ctx context.Context, s *model.Schedule) (*model.Schedule, error)
	Active(ctx context.Context, microgridID string, date time.Time) (*model.Schedule, error)
	List(ctx context.Context, microgridID string) ([]*model.Schedule, error)
	Close() error
}

// MemoryStore is an in-memory ScheduleStore, used in tests and as a default
// when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	active map[string]*model.Schedule // microgrid|date -> schedule
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{active: make(map[string]*model.Schedule), now: time.Now}
}

func key(microgridID string, date time.Time) string {
	return microgridID + "|" + DateKey(date)
}

// Save implements ScheduleStore.
func (m *MemoryStore) Save(_ context.Context, s *model.Schedule) (*model.Schedule, error) {
	cp := *s
	cp.ID = uuid.NewString()
	cp.CreatedAt = m.now().UTC()
	m.mu.Lock()
	m.active[key(cp.MicrogridID, cp.Date)] = &cp
	m.mu.Unlock()
	return &cp, nil
}

// Active implements ScheduleStore.
func (m *MemoryStore) Active(_ context.Context, microgridID string, date time.Time) (*model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.active[key(microgridID, date)]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List implements ScheduleStore.
func (m *MemoryStore) List(_ context.Context, microgridID string) ([]*model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Schedule
	for _, s := range m.active {
		if s.MicrogridID == microgridID {
			out = append(out, s)
		}
	}
	return out, nil
}

// Close implements ScheduleStore.
func (m *MemoryStore) Close() error { return nil }
