package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists work sessions.
//
// Assumed schema:
//
//	CREATE TABLE sessions (
//	  id                  UUID PRIMARY KEY,
//	  caller_id           UUID NOT NULL REFERENCES callers(id),
//	  start_time          TIMESTAMPTZ NOT NULL,
//	  end_time            TIMESTAMPTZ,
//	  leads_completed     INT NOT NULL DEFAULT 0,
//	  total_call_duration INT NOT NULL DEFAULT 0
//	);
//	CREATE INDEX sessions_open_idx ON sessions (caller_id) WHERE end_time IS NULL;
//
// Every UPDATE is guarded by end_time IS NULL; closed rows are immutable.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const sessionColumns = "id, caller_id, start_time, end_time, leads_completed, total_call_duration"

func scanSession(row interface{ Scan(...any) error }) (WorkSession, error) {
	var s WorkSession
	var end sql.NullTime
	err := row.Scan(&s.ID, &s.CallerID, &s.StartTime, &end, &s.LeadsCompleted, &s.TotalCallDurationSeconds)
	if err != nil {
		return WorkSession{}, err
	}
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	return s, nil
}

func (st *PostgresStore) Create(ctx context.Context, s WorkSession) error {
	const q = `
INSERT INTO sessions (id, caller_id, start_time, end_time, leads_completed, total_call_duration)
VALUES ($1,$2,$3,NULL,$4,$5)
`
	if _, err := st.db.ExecContext(ctx, q, s.ID, s.CallerID, s.StartTime, s.LeadsCompleted, s.TotalCallDurationSeconds); err != nil {
		return fmt.Errorf("sessions: insert: %w", err)
	}
	return nil
}

func (st *PostgresStore) Get(ctx context.Context, id string) (WorkSession, bool, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSession(st.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WorkSession{}, false, nil
		}
		return WorkSession{}, false, fmt.Errorf("sessions: get: %w", err)
	}
	return s, true, nil
}

func (st *PostgresStore) CloseOpenForCaller(ctx context.Context, callerID string, endTime time.Time) (int, error) {
	const q = `
UPDATE sessions
SET end_time = $2
WHERE caller_id = $1 AND end_time IS NULL
`
	res, err := st.db.ExecContext(ctx, q, callerID, endTime)
	if err != nil {
		return 0, fmt.Errorf("sessions: close open for caller: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sessions: close open for caller: %w", err)
	}
	return int(n), nil
}

func (st *PostgresStore) Close(ctx context.Context, id string, endTime time.Time, leadsCompleted, totalCallDurationSeconds int) (bool, error) {
	const q = `
UPDATE sessions
SET end_time = $2, leads_completed = $3, total_call_duration = $4
WHERE id = $1 AND end_time IS NULL
`
	res, err := st.db.ExecContext(ctx, q, id, endTime, leadsCompleted, totalCallDurationSeconds)
	if err != nil {
		return false, fmt.Errorf("sessions: close: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sessions: close: %w", err)
	}
	return n > 0, nil
}

func (st *PostgresStore) AddProgress(ctx context.Context, id string, leadsDelta, durationDeltaSeconds int) (bool, error) {
	const q = `
UPDATE sessions
SET leads_completed = leads_completed + $2,
    total_call_duration = total_call_duration + $3
WHERE id = $1 AND end_time IS NULL
`
	res, err := st.db.ExecContext(ctx, q, id, leadsDelta, durationDeltaSeconds)
	if err != nil {
		return false, fmt.Errorf("sessions: add progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sessions: add progress: %w", err)
	}
	return n > 0, nil
}

func (st *PostgresStore) ListOpenStartedBefore(ctx context.Context, cutoff time.Time) ([]WorkSession, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE end_time IS NULL AND start_time < $1
ORDER BY start_time
`
	return st.querySessions(ctx, q, cutoff)
}

func (st *PostgresStore) ListAll(ctx context.Context) ([]WorkSession, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions ORDER BY start_time`
	return st.querySessions(ctx, q)
}

func (st *PostgresStore) ListByCaller(ctx context.Context, callerID string) ([]WorkSession, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE caller_id = $1
ORDER BY start_time DESC
`
	return st.querySessions(ctx, q, callerID)
}

func (st *PostgresStore) querySessions(ctx context.Context, q string, args ...any) ([]WorkSession, error) {
	rows, err := st.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sessions: list: %w", err)
	}
	defer rows.Close()

	out := make([]WorkSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("sessions: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sessions: rows: %w", err)
	}
	return out, nil
}
