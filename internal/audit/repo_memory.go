package audit

import (
	"context"
	"errors"
	"sync"
)

// MemoryRepo is an in-memory append-only repository for tests. It is not
// intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event

	// FailAppends simulates a broken audit sink; callers treat audit as
	// best-effort, so their primary flows must survive this.
	FailAppends bool
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAppends {
		return errors.New("audit: append failed")
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything appended so far, in order.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
