package stats

// CallerStats is the per-caller performance view consumed by the admin
// dashboard. Rates are integer percentages in [0, 100].
type CallerStats struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`

	HasActiveSession bool `json:"has_active_session"`

	LeadsCount     int `json:"leads_count"`
	CompletedCount int `json:"completed_count"`

	// TotalCallDurationSeconds sums call durations across the caller's leads.
	TotalCallDurationSeconds int `json:"total_duration"`

	AnsweredCount int `json:"answered_count"`
	BookedCount   int `json:"booked_count"`
	RejectedCount int `json:"rejected_count"`

	BookingRate   int `json:"booking_rate"`
	RejectionRate int `json:"rejection_rate"`

	// TotalSessionTimeSeconds sums session durations with the open-session
	// cap applied.
	TotalSessionTimeSeconds int `json:"total_session_time"`
	SessionsCount           int `json:"sessions_count"`
}

// Overview is the global dashboard view.
type Overview struct {
	TotalCallers  int `json:"total_callers"`
	ActiveCallers int `json:"active_callers"`

	TotalLeads         int `json:"total_leads"`
	CompletedLeads     int `json:"completed_leads"`
	NoAnswerLeads      int `json:"no_answer_leads"`
	InterestedLeads    int `json:"interested_leads"`
	NotInterestedLeads int `json:"not_interested_leads"`
	ClosedLeads        int `json:"closed_leads"`

	// CallbackCount counts leads parked for retry (status no_answer).
	CallbackCount int `json:"callback_count"`

	// AvgCallDuration is formatted minutes:seconds, e.g. "3:05".
	AvgCallDuration string `json:"avg_call_duration"`

	// ResponseRate = answered / attempted, CloseRate = closed / answered;
	// both integer percentages, 0 when the denominator is 0.
	ResponseRate int `json:"response_rate"`
	CloseRate    int `json:"close_rate"`

	Callers []CallerStats `json:"callers"`
}
