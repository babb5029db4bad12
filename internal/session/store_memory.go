package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory session store for tests and early
// development. It applies the same end_time IS NULL guards as the Postgres
// store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]WorkSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]WorkSession{}}
}

func (m *MemoryStore) Create(ctx context.Context, s WorkSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (WorkSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

func (m *MemoryStore) CloseOpenForCaller(ctx context.Context, callerID string, endTime time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.CallerID == callerID && s.EndTime == nil {
			t := endTime
			s.EndTime = &t
			m.sessions[id] = s
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Close(ctx context.Context, id string, endTime time.Time, leadsCompleted, totalCallDurationSeconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.EndTime != nil {
		return false, nil
	}
	t := endTime
	s.EndTime = &t
	s.LeadsCompleted = leadsCompleted
	s.TotalCallDurationSeconds = totalCallDurationSeconds
	m.sessions[id] = s
	return true, nil
}

func (m *MemoryStore) AddProgress(ctx context.Context, id string, leadsDelta, durationDeltaSeconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.EndTime != nil {
		return false, nil
	}
	s.LeadsCompleted += leadsDelta
	s.TotalCallDurationSeconds += durationDeltaSeconds
	m.sessions[id] = s
	return true, nil
}

func (m *MemoryStore) ListOpenStartedBefore(ctx context.Context, cutoff time.Time) ([]WorkSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WorkSession, 0)
	for _, s := range m.sessions {
		if s.EndTime == nil && s.StartTime.Before(cutoff) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *MemoryStore) ListByCaller(ctx context.Context, callerID string) ([]WorkSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WorkSession, 0)
	for _, s := range m.sessions {
		if s.CallerID == callerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}
