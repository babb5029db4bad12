package stats

import (
	"context"
	"database/sql"

	"coldcall-crm/internal/callers"
	"coldcall-crm/internal/leads"
	"coldcall-crm/internal/session"
)

// PostgresRepo reads the callers, leads and sessions tables through the
// domain stores. Reporting never writes, so it reuses the stores' list
// queries instead of carrying its own SQL.
type PostgresRepo struct {
	callers  *callers.PostgresStore
	leads    *leads.PostgresStore
	sessions *session.PostgresStore
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{
		callers:  callers.NewPostgresStore(db),
		leads:    leads.NewPostgresStore(db),
		sessions: session.NewPostgresStore(db),
	}
}

func (r *PostgresRepo) ListCallers(ctx context.Context) ([]callers.Caller, error) {
	return r.callers.List(ctx)
}

func (r *PostgresRepo) ListLeads(ctx context.Context) ([]leads.Lead, error) {
	return r.leads.ListAll(ctx)
}

func (r *PostgresRepo) ListSessions(ctx context.Context) ([]session.WorkSession, error) {
	return r.sessions.ListAll(ctx)
}
