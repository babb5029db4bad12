package stats

import (
	"context"
	"sync"

	"coldcall-crm/internal/callers"
	"coldcall-crm/internal/leads"
	"coldcall-crm/internal/session"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development.
type MemoryRepo struct {
	mu sync.Mutex

	Callers  []callers.Caller
	Leads    []leads.Lead
	Sessions []session.WorkSession
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCallers(ctx context.Context) ([]callers.Caller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]callers.Caller, len(r.Callers))
	copy(out, r.Callers)
	return out, nil
}

func (r *MemoryRepo) ListLeads(ctx context.Context) ([]leads.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]leads.Lead, len(r.Leads))
	copy(out, r.Leads)
	return out, nil
}

func (r *MemoryRepo) ListSessions(ctx context.Context) ([]session.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.WorkSession, len(r.Sessions))
	copy(out, r.Sessions)
	return out, nil
}
