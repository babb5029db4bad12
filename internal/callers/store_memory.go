package callers

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a simple in-memory directory for tests and early development.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Caller
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: map[string]Caller{}}
}

func (m *MemoryStore) Create(ctx context.Context, c Caller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[c.ID] = c
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Caller, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.profiles[id]
	return c, ok, nil
}

func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (Caller, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.profiles {
		if c.Email == email {
			return c, true, nil
		}
	}
	return Caller{}, false, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Caller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Caller, 0, len(m.profiles))
	for _, c := range m.profiles {
		out = append(out, c)
	}
	sortStable(out)
	return out, nil
}

func (m *MemoryStore) ListActiveCallers(ctx context.Context) ([]Caller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Caller, 0)
	for _, c := range m.profiles {
		if c.Role == "caller" && c.IsActive {
			out = append(out, c)
		}
	}
	sortStable(out)
	return out, nil
}

func (m *MemoryStore) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.profiles[id]
	if !ok {
		return false, nil
	}
	c.IsActive = active
	m.profiles[id] = c
	return true, nil
}

// sortStable mirrors the Postgres ORDER BY created_at, id.
func sortStable(cs []Caller) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}
