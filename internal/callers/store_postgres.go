package callers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists profiles in the callers table.
//
// Assumed schema:
//
//	CREATE TABLE callers (
//	  id         UUID PRIMARY KEY,
//	  name       TEXT NOT NULL,
//	  email      TEXT NOT NULL UNIQUE,
//	  role       TEXT NOT NULL,
//	  is_active  BOOLEAN NOT NULL DEFAULT TRUE,
//	  created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const callerColumns = "id, name, email, role, is_active, created_at"

func scanCaller(row interface{ Scan(...any) error }) (Caller, error) {
	var c Caller
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Role, &c.IsActive, &c.CreatedAt)
	return c, err
}

func (s *PostgresStore) Create(ctx context.Context, c Caller) error {
	const q = `
INSERT INTO callers (id, name, email, role, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	if _, err := s.db.ExecContext(ctx, q, c.ID, c.Name, c.Email, c.Role, c.IsActive, c.CreatedAt); err != nil {
		return fmt.Errorf("callers: insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Caller, bool, error) {
	const q = `SELECT ` + callerColumns + ` FROM callers WHERE id = $1`
	c, err := scanCaller(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Caller{}, false, nil
		}
		return Caller{}, false, fmt.Errorf("callers: get: %w", err)
	}
	return c, true, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (Caller, bool, error) {
	const q = `SELECT ` + callerColumns + ` FROM callers WHERE email = $1`
	c, err := scanCaller(s.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Caller{}, false, nil
		}
		return Caller{}, false, fmt.Errorf("callers: get by email: %w", err)
	}
	return c, true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Caller, error) {
	const q = `SELECT ` + callerColumns + ` FROM callers ORDER BY created_at, id`
	return s.queryCallers(ctx, q)
}

func (s *PostgresStore) ListActiveCallers(ctx context.Context) ([]Caller, error) {
	// Stable order underpins deterministic round-robin distribution.
	const q = `
SELECT ` + callerColumns + `
FROM callers
WHERE role = 'caller' AND is_active
ORDER BY created_at, id
`
	return s.queryCallers(ctx, q)
}

func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	const q = `UPDATE callers SET is_active = $2 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id, active)
	if err != nil {
		return false, fmt.Errorf("callers: set active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("callers: set active: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) queryCallers(ctx context.Context, q string, args ...any) ([]Caller, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("callers: list: %w", err)
	}
	defer rows.Close()

	out := make([]Caller, 0)
	for rows.Next() {
		c, err := scanCaller(rows)
		if err != nil {
			return nil, fmt.Errorf("callers: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("callers: rows: %w", err)
	}
	return out, nil
}
