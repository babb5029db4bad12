package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coldcall-crm/pkg/utils"
)

// PostgresStore persists leads.
//
// Assumed schema:
//
//	CREATE TABLE leads (
//	  id            UUID PRIMARY KEY,
//	  company_name  TEXT NOT NULL,
//	  contact_name  TEXT NOT NULL DEFAULT '',
//	  phone         TEXT NOT NULL,
//	  status        TEXT NOT NULL,
//	  call_result   TEXT NOT NULL DEFAULT '',
//	  call_duration INT  NOT NULL DEFAULT 0,
//	  recording_url TEXT NOT NULL DEFAULT '',
//	  transcript    TEXT NOT NULL DEFAULT '',
//	  notes         TEXT NOT NULL DEFAULT '',
//	  assigned_to   UUID REFERENCES callers(id),
//	  lead_order    BIGINT NOT NULL UNIQUE,
//	  completed_at  TIMESTAMPTZ
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const leadColumns = "id, company_name, contact_name, phone, status, call_result, call_duration, recording_url, transcript, notes, assigned_to, lead_order, completed_at"

func scanLead(row interface{ Scan(...any) error }) (Lead, error) {
	var l Lead
	var assigned sql.NullString
	var completed sql.NullTime
	err := row.Scan(
		&l.ID,
		&l.CompanyName,
		&l.ContactName,
		&l.Phone,
		&l.Status,
		&l.CallResult,
		&l.CallDurationSeconds,
		&l.RecordingURL,
		&l.Transcript,
		&l.Notes,
		&assigned,
		&l.Order,
		&completed,
	)
	if err != nil {
		return Lead{}, err
	}
	if assigned.Valid {
		l.AssignedTo = assigned.String
	}
	if completed.Valid {
		t := completed.Time
		l.CompletedAt = &t
	}
	return l, nil
}

// Advisory lock key serializing lead_order assignment across imports.
const leadOrderLockKey = int64(0x6c656164)

func (st *PostgresStore) InsertBatch(ctx context.Context, batch []Lead) ([]Lead, error) {
	out := make([]Lead, len(batch))
	copy(out, batch)

	// One transaction for the whole import: either every lead lands or none.
	// The advisory lock holds until commit, so the max read and the inserts
	// see no concurrent import in between.
	err := utils.WithTx(ctx, st.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, leadOrderLockKey); err != nil {
			return fmt.Errorf("leads: order lock: %w", err)
		}

		var maxOrder int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(lead_order), 0) FROM leads`).Scan(&maxOrder); err != nil {
			return fmt.Errorf("leads: max order: %w", err)
		}

		const q = `
INSERT INTO leads (id, company_name, contact_name, phone, status, call_result, call_duration,
                   recording_url, transcript, notes, assigned_to, lead_order, completed_at)
VALUES ($1,$2,$3,$4,$5,'',0,'','','',$6,$7,NULL)
`
		for i := range out {
			out[i].Order += maxOrder
			if _, err := tx.ExecContext(ctx, q, out[i].ID, out[i].CompanyName, out[i].ContactName, out[i].Phone, out[i].Status, out[i].AssignedTo, out[i].Order); err != nil {
				return fmt.Errorf("leads: insert batch: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (st *PostgresStore) Get(ctx context.Context, id string) (Lead, bool, error) {
	const q = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	l, err := scanLead(st.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, false, nil
		}
		return Lead{}, false, fmt.Errorf("leads: get: %w", err)
	}
	return l, true, nil
}

func (st *PostgresStore) Complete(ctx context.Context, id string, status Status, result CallResult, durationSeconds int, notes string, completedAt time.Time) (bool, error) {
	// Conditional on pending: completed_at is written exactly once.
	const q = `
UPDATE leads
SET status = $2, call_result = $3, call_duration = $4, notes = $5, completed_at = $6
WHERE id = $1 AND status = 'pending'
`
	res, err := st.db.ExecContext(ctx, q, id, status, result, durationSeconds, notes, completedAt)
	if err != nil {
		return false, fmt.Errorf("leads: complete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("leads: complete: %w", err)
	}
	return n > 0, nil
}

func (st *PostgresStore) AttachRecording(ctx context.Context, id, recordingURL string) (bool, error) {
	const q = `UPDATE leads SET recording_url = $2 WHERE id = $1`
	res, err := st.db.ExecContext(ctx, q, id, recordingURL)
	if err != nil {
		return false, fmt.Errorf("leads: attach recording: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("leads: attach recording: %w", err)
	}
	return n > 0, nil
}

func (st *PostgresStore) AttachTranscript(ctx context.Context, id, transcript string) (bool, error) {
	const q = `UPDATE leads SET transcript = $2 WHERE id = $1`
	res, err := st.db.ExecContext(ctx, q, id, transcript)
	if err != nil {
		return false, fmt.Errorf("leads: attach transcript: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("leads: attach transcript: %w", err)
	}
	return n > 0, nil
}

func (st *PostgresStore) ListByAssignee(ctx context.Context, callerID string) ([]Lead, error) {
	const q = `SELECT ` + leadColumns + ` FROM leads WHERE assigned_to = $1 ORDER BY lead_order`
	return st.queryLeads(ctx, q, callerID)
}

func (st *PostgresStore) ListAll(ctx context.Context) ([]Lead, error) {
	const q = `SELECT ` + leadColumns + ` FROM leads ORDER BY lead_order`
	return st.queryLeads(ctx, q)
}

func (st *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Lead, error) {
	const q = `SELECT ` + leadColumns + ` FROM leads WHERE status = $1 ORDER BY lead_order`
	return st.queryLeads(ctx, q, status)
}

func (st *PostgresStore) queryLeads(ctx context.Context, q string, args ...any) ([]Lead, error) {
	rows, err := st.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list: %w", err)
	}
	defer rows.Close()

	out := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: rows: %w", err)
	}
	return out, nil
}
