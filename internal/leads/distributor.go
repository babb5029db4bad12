package leads

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNoActiveCallers = errors.New("leads: no active callers")
	ErrInvalidLead     = errors.New("leads: invalid lead row")
)

// NewLead is an already-parsed import row (CSV parsing happens upstream).
type NewLead struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name,omitempty"`
	Phone       string `json:"phone"`
}

// Distribute assigns a batch of fresh leads round-robin across the active
// callers, in slice order: lead i goes to activeCallers[i mod n] with
// Order = startOrder + i.
//
// Orders are contiguous and strictly increasing within the batch; the store
// rebases them onto the persisted sequence at insert time. Round-robin over a
// stable caller order gives an even split (counts differ by at most one) and
// makes every assignment reproducible after the fact.
//
// The whole batch is validated before any lead is built: an import either
// distributes completely or not at all.
func Distribute(rows []NewLead, activeCallers []string, startOrder int64) ([]Lead, error) {
	if len(activeCallers) == 0 {
		return nil, ErrNoActiveCallers
	}
	for _, r := range rows {
		if strings.TrimSpace(r.CompanyName) == "" || strings.TrimSpace(r.Phone) == "" {
			return nil, ErrInvalidLead
		}
	}

	out := make([]Lead, 0, len(rows))
	for i, r := range rows {
		out = append(out, Lead{
			ID:          uuid.NewString(),
			CompanyName: strings.TrimSpace(r.CompanyName),
			ContactName: strings.TrimSpace(r.ContactName),
			Phone:       strings.TrimSpace(r.Phone),
			Status:      StatusPending,
			AssignedTo:  activeCallers[i%len(activeCallers)],
			Order:       startOrder + int64(i),
		})
	}
	return out, nil
}
