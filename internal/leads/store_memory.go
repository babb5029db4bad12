package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory lead store for tests and early
// development. It applies the same status = pending guard as the Postgres
// store.
type MemoryStore struct {
	mu    sync.Mutex
	leads map[string]Lead

	// FailInserts simulates storage failure for all-or-nothing import tests.
	FailInserts bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{leads: map[string]Lead{}}
}

type storageFailure struct{}

func (storageFailure) Error() string { return "leads: storage failure" }

func (m *MemoryStore) InsertBatch(ctx context.Context, batch []Lead) ([]Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInserts {
		return nil, storageFailure{}
	}

	// Rebase the batch onto the highest assigned order under the lock, same
	// contract as the transactional store.
	var maxOrder int64
	for _, l := range m.leads {
		if l.Order > maxOrder {
			maxOrder = l.Order
		}
	}

	out := make([]Lead, len(batch))
	copy(out, batch)
	for i := range out {
		out[i].Order += maxOrder
		m.leads[out[i].ID] = out[i]
	}
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Lead, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	return l, ok, nil
}

func (m *MemoryStore) MaxOrder(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max int64
	for _, l := range m.leads {
		if l.Order > max {
			max = l.Order
		}
	}
	return max, nil
}

func (m *MemoryStore) Complete(ctx context.Context, id string, status Status, result CallResult, durationSeconds int, notes string, completedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok || l.Status != StatusPending {
		return false, nil
	}
	l.Status = status
	l.CallResult = result
	l.CallDurationSeconds = durationSeconds
	l.Notes = notes
	t := completedAt
	l.CompletedAt = &t
	m.leads[id] = l
	return true, nil
}

func (m *MemoryStore) AttachRecording(ctx context.Context, id, recordingURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return false, nil
	}
	l.RecordingURL = recordingURL
	m.leads[id] = l
	return true, nil
}

func (m *MemoryStore) AttachTranscript(ctx context.Context, id, transcript string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return false, nil
	}
	l.Transcript = transcript
	m.leads[id] = l
	return true, nil
}

func (m *MemoryStore) ListByAssignee(ctx context.Context, callerID string) ([]Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Lead, 0)
	for _, l := range m.leads {
		if l.AssignedTo == callerID {
			out = append(out, l)
		}
	}
	sortByOrder(out)
	return out, nil
}

func (m *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Lead, 0)
	for _, l := range m.leads {
		if l.Status == status {
			out = append(out, l)
		}
	}
	sortByOrder(out)
	return out, nil
}

func sortByOrder(ls []Lead) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].Order < ls[j].Order })
}
