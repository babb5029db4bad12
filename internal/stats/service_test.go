package stats

import (
	"context"
	"testing"
	"time"

	"coldcall-crm/internal/callers"
	"coldcall-crm/internal/config"
	"coldcall-crm/internal/leads"
	"coldcall-crm/internal/session"
)

var testNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestService(repo *MemoryRepo) *Service {
	cfg := config.SessionConfig{
		DurationCap:     12 * time.Hour,
		OrphanThreshold: 8 * time.Hour,
		OrphanCap:       8 * time.Hour,
		SweepInterval:   30 * time.Minute,
	}
	svc := NewService(repo, cfg)
	svc.clock = func() time.Time { return testNow }
	return svc
}

func completedLead(assignee string, result leads.CallResult, durationSeconds int) leads.Lead {
	done := testNow.Add(-time.Hour)
	status := leads.StatusCompleted
	if result == leads.ResultNoAnswer {
		status = leads.StatusNoAnswer
	}
	return leads.Lead{
		ID:                  "l-" + string(result),
		CompanyName:         "Acme",
		Phone:               "+33100000000",
		Status:              status,
		CallResult:          result,
		CallDurationSeconds: durationSeconds,
		AssignedTo:          assignee,
		CompletedAt:         &done,
	}
}

func TestRatePercent(t *testing.T) {
	cases := []struct {
		num, den, want int
	}{
		{4, 6, 67},
		{2, 6, 33},
		{1, 8, 13}, // 12.5 rounds up
		{1, 3, 33},
		{0, 5, 0},
		{5, 5, 100},
		{3, 0, 0}, // zero denominator never divides
	}
	for _, c := range cases {
		if got := RatePercent(c.num, c.den); got != c.want {
			t.Errorf("RatePercent(%d, %d) = %d, want %d", c.num, c.den, got, c.want)
		}
	}
}

func TestFormatMinSec(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{185, "3:05"},
		{-10, "0:00"},
	}
	for _, c := range cases {
		if got := FormatMinSec(c.seconds); got != c.want {
			t.Errorf("FormatMinSec(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestOverviewCallerRates(t *testing.T) {
	// 6 answered calls: 2 interested + 2 closed (booked) and 2 rejections.
	// 2 further no-answer calls bring attempts to 8.
	repo := NewMemoryRepo()
	repo.Callers = []callers.Caller{{ID: "c1", Name: "Ana", Email: "ana@x.fr", Role: "caller", IsActive: true}}
	repo.Leads = []leads.Lead{
		completedLead("c1", leads.ResultInterested, 120),
		completedLead("c1", leads.ResultInterested, 60),
		completedLead("c1", leads.ResultClosed, 300),
		completedLead("c1", leads.ResultClosed, 240),
		completedLead("c1", leads.ResultNotInterested, 30),
		completedLead("c1", leads.ResultNotInterested, 90),
		completedLead("c1", leads.ResultNoAnswer, 0),
		completedLead("c1", leads.ResultNoAnswer, 0),
	}

	out, err := newTestService(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(out.Callers) != 1 {
		t.Fatalf("got %d caller rows, want 1", len(out.Callers))
	}
	cs := out.Callers[0]

	if cs.AnsweredCount != 6 || cs.BookedCount != 4 || cs.RejectedCount != 2 {
		t.Fatalf("counts = answered %d booked %d rejected %d", cs.AnsweredCount, cs.BookedCount, cs.RejectedCount)
	}
	if cs.BookingRate != 67 {
		t.Errorf("BookingRate = %d, want 67", cs.BookingRate)
	}
	if cs.RejectionRate != 33 {
		t.Errorf("RejectionRate = %d, want 33", cs.RejectionRate)
	}
	if out.ResponseRate != 75 { // 6 answered of 8 attempted
		t.Errorf("ResponseRate = %d, want 75", out.ResponseRate)
	}
	if out.CloseRate != 33 { // 2 closed of 6 answered
		t.Errorf("CloseRate = %d, want 33", out.CloseRate)
	}
}

func TestOverviewExcludesNonCallerProfiles(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Callers = []callers.Caller{
		{ID: "c1", Name: "Ana", Email: "ana@x.fr", Role: "caller", IsActive: true},
		{ID: "a1", Name: "Max", Email: "max@x.fr", Role: "admin", IsActive: true},
		{ID: "sup1", Name: "Lou", Email: "lou@x.fr", Role: "supervisor", IsActive: true},
	}
	repo.Sessions = []session.WorkSession{
		{ID: "s1", CallerID: "c1", StartTime: testNow.Add(-time.Hour)},
	}

	out, err := newTestService(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.TotalCallers != 1 {
		t.Errorf("TotalCallers = %d, want 1", out.TotalCallers)
	}
	if out.ActiveCallers != 1 {
		t.Errorf("ActiveCallers = %d, want 1", out.ActiveCallers)
	}
	if len(out.Callers) != 1 || out.Callers[0].ID != "c1" {
		t.Fatalf("caller rows = %+v, want only c1", out.Callers)
	}
}

func TestOverviewEmptyDataHasZeroRates(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Callers = []callers.Caller{{ID: "c1", Name: "Ana", Email: "ana@x.fr", Role: "caller", IsActive: true}}

	out, err := newTestService(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.ResponseRate != 0 || out.CloseRate != 0 {
		t.Errorf("rates = %d/%d, want 0/0", out.ResponseRate, out.CloseRate)
	}
	if out.AvgCallDuration != "0:00" {
		t.Errorf("AvgCallDuration = %q, want 0:00", out.AvgCallDuration)
	}
	cs := out.Callers[0]
	if cs.BookingRate != 0 || cs.RejectionRate != 0 {
		t.Errorf("caller rates = %d/%d, want 0/0", cs.BookingRate, cs.RejectionRate)
	}
}

func TestOverviewAvgCallDuration(t *testing.T) {
	// Two completed calls at 150s and 220s average to 185s, shown as 3:05.
	repo := NewMemoryRepo()
	repo.Callers = []callers.Caller{{ID: "c1", Name: "Ana", Email: "ana@x.fr", Role: "caller", IsActive: true}}
	repo.Leads = []leads.Lead{
		completedLead("c1", leads.ResultInterested, 150),
		completedLead("c1", leads.ResultNotInterested, 220),
		{ID: "p1", CompanyName: "Pend", Phone: "+33", Status: leads.StatusPending, AssignedTo: "c1"},
	}

	out, err := newTestService(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.AvgCallDuration != "3:05" {
		t.Errorf("AvgCallDuration = %q, want 3:05", out.AvgCallDuration)
	}
	if out.TotalLeads != 3 || out.CompletedLeads != 2 {
		t.Errorf("lead counts = %d total %d completed", out.TotalLeads, out.CompletedLeads)
	}
}

func TestOverviewCallbackCount(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Callers = []callers.Caller{{ID: "c1", Name: "Ana", Email: "ana@x.fr", Role: "caller", IsActive: true}}
	repo.Leads = []leads.Lead{
		completedLead("c1", leads.ResultNoAnswer, 0),
		completedLead("c1", leads.ResultNoAnswer, 0),
		completedLead("c1", leads.ResultClosed, 60),
	}

	out, err := newTestService(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.CallbackCount != 2 {
		t.Errorf("CallbackCount = %d, want 2", out.CallbackCount)
	}
	if out.NoAnswerLeads != 2 {
		t.Errorf("NoAnswerLeads = %d, want 2", out.NoAnswerLeads)
	}
}

func TestOverviewSessionTimeCapsOpenSessions(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Callers = []callers.Caller{{ID: "c1", Name: "Ana", Email: "ana@x.fr", Role: "caller", IsActive: true}}
	closedEnd := testNow.Add(-2 * time.Hour)
	repo.Sessions = []session.WorkSession{
		{ID: "s1", CallerID: "c1", StartTime: testNow.Add(-3 * time.Hour), EndTime: &closedEnd},
		// Abandoned twenty hours ago; contributes at most the 12h cap.
		{ID: "s2", CallerID: "c1", StartTime: testNow.Add(-20 * time.Hour)},
	}

	out, err := newTestService(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	cs := out.Callers[0]
	want := int((1*time.Hour + 12*time.Hour).Seconds())
	if cs.TotalSessionTimeSeconds != want {
		t.Errorf("TotalSessionTimeSeconds = %d, want %d", cs.TotalSessionTimeSeconds, want)
	}
	if cs.SessionsCount != 2 {
		t.Errorf("SessionsCount = %d, want 2", cs.SessionsCount)
	}
	if !cs.HasActiveSession {
		t.Error("HasActiveSession = false, want true")
	}
	if out.ActiveCallers != 1 {
		t.Errorf("ActiveCallers = %d, want 1", out.ActiveCallers)
	}
}

func TestOverviewNoOpenSession(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Callers = []callers.Caller{{ID: "c1", Name: "Ana", Email: "ana@x.fr", Role: "caller", IsActive: true}}
	end := testNow.Add(-30 * time.Minute)
	repo.Sessions = []session.WorkSession{
		{ID: "s1", CallerID: "c1", StartTime: testNow.Add(-90 * time.Minute), EndTime: &end},
	}

	out, err := newTestService(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.Callers[0].HasActiveSession {
		t.Error("HasActiveSession = true for a closed session")
	}
	if out.ActiveCallers != 0 {
		t.Errorf("ActiveCallers = %d, want 0", out.ActiveCallers)
	}
}
