package session

import "time"

// WorkSession is a bounded period during which a caller actively works a
// lead queue.
//
// State machine: Open -> Closed, one-way. A session is open while EndTime is
// nil. Closing happens through Service.End, through the orphan sweep, or
// implicitly when the same caller starts a new session.
//
// Invariant (enforced by Service.Start, not by storage): at most one session
// per caller is open at any instant.
//
// Counters are monotonically non-decreasing while the session is open and
// frozen once it closes.
type WorkSession struct {
	ID       string `json:"id" db:"id"`
	CallerID string `json:"caller_id" db:"caller_id"`

	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`

	LeadsCompleted           int `json:"leads_completed" db:"leads_completed"`
	TotalCallDurationSeconds int `json:"total_call_duration" db:"total_call_duration"`
}

// Open reports whether the session has not been closed yet.
func (s WorkSession) Open() bool { return s.EndTime == nil }

// ComputeDuration returns the session's elapsed time.
//
// Closed sessions report their recorded span. Open sessions report elapsed
// time since start, capped at cap: a session left open by a crashed client
// must not inflate aggregate active-time metrics without bound. The cap
// applies to duration accounting only; it does not close the session (the
// orphan sweep does that).
func ComputeDuration(s WorkSession, now time.Time, cap time.Duration) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	d := now.Sub(s.StartTime)
	if d > cap {
		return cap
	}
	if d < 0 {
		return 0
	}
	return d
}
