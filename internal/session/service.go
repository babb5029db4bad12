package session

import (
	"context"
	"errors"
	"time"

	"coldcall-crm/internal/config"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("session: not found")
	ErrSessionClosed   = errors.New("session: already closed")
	ErrInvalidArgument = errors.New("session: invalid argument")
)

// Store is the persistence contract for work sessions.
//
// Conditional-close discipline: every mutation of an existing session must be
// guarded by "end_time IS NULL" so that a close racing with the orphan sweep
// (or with a concurrent device) never clobbers an already-closed row.
type Store interface {
	Create(ctx context.Context, s WorkSession) error
	Get(ctx context.Context, id string) (WorkSession, bool, error)

	// CloseOpenForCaller closes every open session of the caller at endTime
	// and returns how many rows it closed.
	CloseOpenForCaller(ctx context.Context, callerID string, endTime time.Time) (int, error)

	// Close sets end_time and the final counters, conditional on the session
	// still being open. Returns false when no open row matched.
	Close(ctx context.Context, id string, endTime time.Time, leadsCompleted, totalCallDurationSeconds int) (bool, error)

	// AddProgress bumps the counters on an open session. Returns false when
	// no open row matched.
	AddProgress(ctx context.Context, id string, leadsDelta, durationDeltaSeconds int) (bool, error)

	ListOpenStartedBefore(ctx context.Context, cutoff time.Time) ([]WorkSession, error)
	ListByCaller(ctx context.Context, callerID string) ([]WorkSession, error)
}

// Service maintains the work-session lifecycle: the single-open-session-per-
// caller invariant, safe duration accounting, and the orphan sweep.
type Service struct {
	store Store
	cfg   config.SessionConfig
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, cfg config.SessionConfig) *Service {
	return &Service{store: store, cfg: cfg, clock: time.Now}
}

// Start opens a new session for the caller.
//
// This is deliberately a documented two-step operation:
//
//  1. close any session the caller still has open (crash/browser-close can
//     leave one behind, and a second device may race a first one);
//  2. create the fresh session with zeroed counters.
//
// Starting a session is therefore also an end-previous-session operation.
// Concurrent Starts for the same caller converge to exactly one open session
// under last-write-wins; second-level accuracy is not required here.
func (s *Service) Start(ctx context.Context, callerID string) (WorkSession, error) {
	if callerID == "" {
		return WorkSession{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	if _, err := s.store.CloseOpenForCaller(ctx, callerID, now); err != nil {
		return WorkSession{}, err
	}

	sess := WorkSession{
		ID:        uuid.NewString(),
		CallerID:  callerID,
		StartTime: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return WorkSession{}, err
	}
	return sess, nil
}

// FinalCounts carries the client's final view of the session counters,
// persisted at close time.
type FinalCounts struct {
	LeadsCompleted           int `json:"leads_completed"`
	TotalCallDurationSeconds int `json:"total_call_duration"`
}

// End closes an open session and persists the final counters.
func (s *Service) End(ctx context.Context, sessionID string, counts FinalCounts) (WorkSession, error) {
	if sessionID == "" {
		return WorkSession{}, ErrInvalidArgument
	}
	if counts.LeadsCompleted < 0 || counts.TotalCallDurationSeconds < 0 {
		return WorkSession{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	closed, err := s.store.Close(ctx, sessionID, now, counts.LeadsCompleted, counts.TotalCallDurationSeconds)
	if err != nil {
		return WorkSession{}, err
	}
	if !closed {
		// Distinguish "already closed" from "never existed".
		if _, ok, err := s.store.Get(ctx, sessionID); err != nil {
			return WorkSession{}, err
		} else if ok {
			return WorkSession{}, ErrSessionClosed
		}
		return WorkSession{}, ErrNotFound
	}

	out, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return WorkSession{}, err
	}
	if !ok {
		return WorkSession{}, ErrNotFound
	}
	return out, nil
}

// IncrementLeadsCompleted bumps the completed-leads counter on an open session.
func (s *Service) IncrementLeadsCompleted(ctx context.Context, sessionID string) error {
	return s.addProgress(ctx, sessionID, 1, 0)
}

// AddCallDuration adds a finished call's duration to an open session.
func (s *Service) AddCallDuration(ctx context.Context, sessionID string, seconds int) error {
	if seconds < 0 {
		return ErrInvalidArgument
	}
	return s.addProgress(ctx, sessionID, 0, seconds)
}

func (s *Service) addProgress(ctx context.Context, sessionID string, leadsDelta, durationDelta int) error {
	if sessionID == "" {
		return ErrInvalidArgument
	}
	applied, err := s.store.AddProgress(ctx, sessionID, leadsDelta, durationDelta)
	if err != nil {
		return err
	}
	if !applied {
		if _, ok, err := s.store.Get(ctx, sessionID); err != nil {
			return err
		} else if ok {
			return ErrSessionClosed
		}
		return ErrNotFound
	}
	return nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, sessionID string) (WorkSession, error) {
	if sessionID == "" {
		return WorkSession{}, ErrInvalidArgument
	}
	sess, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return WorkSession{}, err
	}
	if !ok {
		return WorkSession{}, ErrNotFound
	}
	return sess, nil
}

// History returns all sessions of a caller, most recent first per store order.
func (s *Service) History(ctx context.Context, callerID string) ([]WorkSession, error) {
	if callerID == "" {
		return nil, ErrInvalidArgument
	}
	return s.store.ListByCaller(ctx, callerID)
}

// Duration computes a session's elapsed time with the configured cap.
func (s *Service) Duration(sess WorkSession, now time.Time) time.Duration {
	return ComputeDuration(sess, now, s.cfg.DurationCap)
}

// ReapOrphans closes sessions that have been open longer than the configured
// threshold, setting end_time to start_time + OrphanCap. Counters are left as
// last reported. The sweep is idempotent: a second run with the same now
// finds zero candidates. A session legitimately closed between the list and
// the conditional close is skipped, so the reaper never overwrites a real
// close time with its estimate.
func (s *Service) ReapOrphans(ctx context.Context) (int, error) {
	now := s.clock().UTC()
	cutoff := now.Add(-s.cfg.OrphanThreshold)

	orphans, err := s.store.ListOpenStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, o := range orphans {
		end := o.StartTime.Add(s.cfg.OrphanCap)
		ok, err := s.store.Close(ctx, o.ID, end, o.LeadsCompleted, o.TotalCallDurationSeconds)
		if err != nil {
			return closed, err
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}
