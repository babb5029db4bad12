package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coldcall-crm/internal/callers"
	"coldcall-crm/internal/config"
	"coldcall-crm/internal/leads"
	"coldcall-crm/internal/rbac"
	"coldcall-crm/internal/session"
)

// Repository abstracts read access for reporting.
//
// Aggregation is a reporting view, not a ledger: it may observe rows that
// concurrent writers are still updating, and that is acceptable.
type Repository interface {
	ListCallers(ctx context.Context) ([]callers.Caller, error)
	ListLeads(ctx context.Context) ([]leads.Lead, error)
	ListSessions(ctx context.Context) ([]session.WorkSession, error)
}

// Service derives per-caller and global metrics from leads and sessions.
// It is pure read-side computation: no mutation, no caching beyond one call.
type Service struct {
	repo Repository
	cfg  config.SessionConfig
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, cfg config.SessionConfig) *Service {
	return &Service{repo: repo, cfg: cfg, clock: time.Now}
}

// Overview computes the global dashboard plus the per-caller breakdown.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	if s.repo == nil {
		return Overview{}, errors.New("stats: repository not configured")
	}

	profiles, err := s.repo.ListCallers(ctx)
	if err != nil {
		return Overview{}, err
	}
	allLeads, err := s.repo.ListLeads(ctx)
	if err != nil {
		return Overview{}, err
	}
	allSessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return Overview{}, err
	}

	now := s.clock().UTC()

	openSessionCallers := map[string]bool{}
	for _, sess := range allSessions {
		if sess.Open() {
			openSessionCallers[sess.CallerID] = true
		}
	}

	out := Overview{TotalLeads: len(allLeads)}

	var attempted, answered, totalDuration, completedCount int
	for _, l := range allLeads {
		switch l.Status {
		case leads.StatusCompleted:
			out.CompletedLeads++
			completedCount++
		case leads.StatusNoAnswer:
			out.NoAnswerLeads++
		}
		if l.Status != leads.StatusPending {
			attempted++
		}
		if l.CallResult.Answered() {
			answered++
		}
		switch l.CallResult {
		case leads.ResultInterested:
			out.InterestedLeads++
		case leads.ResultNotInterested:
			out.NotInterestedLeads++
		case leads.ResultClosed:
			out.ClosedLeads++
		}
		totalDuration += l.CallDurationSeconds
	}
	out.CallbackCount = out.NoAnswerLeads

	out.AvgCallDuration = FormatMinSec(avg(totalDuration, completedCount))
	out.ResponseRate = RatePercent(answered, attempted)
	out.CloseRate = RatePercent(out.ClosedLeads, answered)

	out.Callers = make([]CallerStats, 0, len(profiles))
	for _, p := range profiles {
		// The directory also holds supervisors and admins; the dashboard
		// counts callers only.
		if p.Role != rbac.RoleCaller {
			continue
		}
		cs := s.callerStats(p, allLeads, allSessions, openSessionCallers[p.ID], now)
		out.Callers = append(out.Callers, cs)
		out.TotalCallers++
		if cs.HasActiveSession {
			out.ActiveCallers++
		}
	}

	return out, nil
}

func (s *Service) callerStats(p callers.Caller, allLeads []leads.Lead, allSessions []session.WorkSession, hasActive bool, now time.Time) CallerStats {
	cs := CallerStats{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		IsActive:         p.IsActive,
		HasActiveSession: hasActive,
	}

	for _, l := range allLeads {
		if l.AssignedTo != p.ID {
			continue
		}
		cs.LeadsCount++
		if l.Status == leads.StatusCompleted {
			cs.CompletedCount++
		}
		cs.TotalCallDurationSeconds += l.CallDurationSeconds
		if l.CallResult.Answered() {
			cs.AnsweredCount++
		}
		if l.CallResult.Booked() {
			cs.BookedCount++
		}
		if l.CallResult == leads.ResultNotInterested {
			cs.RejectedCount++
		}
	}

	cs.BookingRate = RatePercent(cs.BookedCount, cs.AnsweredCount)
	cs.RejectionRate = RatePercent(cs.RejectedCount, cs.AnsweredCount)

	for _, sess := range allSessions {
		if sess.CallerID != p.ID {
			continue
		}
		cs.SessionsCount++
		cs.TotalSessionTimeSeconds += int(session.ComputeDuration(sess, now, s.cfg.DurationCap).Seconds())
	}

	return cs
}

// RatePercent returns num/den as a round-half-up integer percentage.
// A zero denominator yields 0, never NaN or a panic.
func RatePercent(num, den int) int {
	if den <= 0 {
		return 0
	}
	// round half up in integer arithmetic
	return (num*200 + den) / (den * 2)
}

// FormatMinSec renders seconds as minutes:seconds, e.g. 185 -> "3:05".
func FormatMinSec(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func avg(total, count int) int {
	if count <= 0 {
		return 0
	}
	// round half up, matching the dashboard's rounding
	return (total*2 + count) / (count * 2)
}
