package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo appends audit events.
//
// Assumed schema:
//
//	CREATE TABLE audit_events (
//	  id            UUID PRIMARY KEY,
//	  type          TEXT NOT NULL,
//	  actor_user_id TEXT NOT NULL DEFAULT '',
//	  actor_role    TEXT NOT NULL DEFAULT '',
//	  ip_address    TEXT NOT NULL DEFAULT '',
//	  lead_id       TEXT NOT NULL DEFAULT '',
//	  session_id    TEXT NOT NULL DEFAULT '',
//	  caller_id     TEXT NOT NULL DEFAULT '',
//	  message       TEXT NOT NULL DEFAULT '',
//	  metadata      TEXT NOT NULL DEFAULT '',
//	  created_at    TIMESTAMPTZ NOT NULL
//	);
//
// Insert-only. No update or delete statements exist in this package.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, type, actor_user_id, actor_role, ip_address, lead_id, session_id, caller_id, message, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Type, e.ActorUserID, e.ActorRole, e.IPAddress,
		e.LeadID, e.SessionID, e.CallerID, e.Message, e.Metadata, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}
