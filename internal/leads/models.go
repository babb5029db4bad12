package leads

import "time"

// Lead is a company/contact record to be called, with one terminal outcome.
//
// Invariant: Status == pending  <=>  CompletedAt == nil  <=>  CallResult == "".
// CompletedAt is set exactly once, when the lead leaves pending.
type Lead struct {
	ID string `json:"id" db:"id"`

	CompanyName string `json:"company_name" db:"company_name"`
	ContactName string `json:"contact_name,omitempty" db:"contact_name"`
	Phone       string `json:"phone" db:"phone"`

	Status     Status     `json:"status" db:"status"`
	CallResult CallResult `json:"call_result,omitempty" db:"call_result"`

	CallDurationSeconds int    `json:"call_duration,omitempty" db:"call_duration"`
	RecordingURL        string `json:"recording_url,omitempty" db:"recording_url"`
	Transcript          string `json:"transcript,omitempty" db:"transcript"`
	Notes               string `json:"notes,omitempty" db:"notes"`

	// AssignedTo is the caller working this lead; set by distribution.
	AssignedTo string `json:"assigned_to,omitempty" db:"assigned_to"`

	// Order is the global, strictly increasing assignment sequence. It fixes
	// both queue position and the round-robin audit trail.
	Order int64 `json:"lead_order" db:"lead_order"`

	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusNoAnswer  Status = "no_answer"
)

type CallResult string

const (
	ResultNoAnswer      CallResult = "no_answer"
	ResultNotInterested CallResult = "answered_not_interested"
	ResultInterested    CallResult = "answered_interested"
	ResultClosed        CallResult = "answered_closed"
)

// Answered reports whether someone picked up.
func (r CallResult) Answered() bool {
	return r != "" && r != ResultNoAnswer
}

// Booked reports whether the call produced interest or a closed deal.
func (r CallResult) Booked() bool {
	return r == ResultInterested || r == ResultClosed
}

func validResult(r CallResult) bool {
	switch r {
	case ResultNoAnswer, ResultNotInterested, ResultInterested, ResultClosed:
		return true
	default:
		return false
	}
}

// statusFor maps a call result to the lead's terminal status: a no-answer
// lead goes to the callback list instead of being completed.
func statusFor(r CallResult) Status {
	if r == ResultNoAnswer {
		return StatusNoAnswer
	}
	return StatusCompleted
}
