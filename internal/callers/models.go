package callers

import "time"

// Caller is a profile in the directory: an end user who works a lead queue
// (role "caller") or reviews performance (supervisor/admin).
//
// Credential storage is handled by the identity provider; this directory only
// keeps the profile data the CRM needs (display, role gating, distribution
// eligibility).
type Caller struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Role     string `json:"role" db:"role"`
	IsActive bool   `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
