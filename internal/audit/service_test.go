package audit

import (
	"context"
	"errors"
	"testing"
)

func TestService_AppendRequiresType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Message: "no type"}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("err = %v, want ErrInvalidEvent", err)
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogAdminAction(context.Background(), "u1", "admin", "1.2.3.4", "deactivated caller", "c1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].Type != EventTypeAdminAction {
		t.Fatalf("expected admin_action")
	}
	if evs[0].CallerID != "c1" {
		t.Fatalf("expected target caller captured")
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned")
	}
}

func TestService_LogLeadImportAndSweep(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogLeadImport(context.Background(), "u1", "admin", "1.2.3.4", 42); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogOrphanSweep(context.Background(), 3); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type != EventTypeLeadImport || evs[0].Message != "imported 42 leads" {
		t.Fatalf("import event = %+v", evs[0])
	}
	if evs[1].Type != EventTypeOrphanSweep || evs[1].ActorUserID != "" {
		t.Fatalf("sweep event = %+v", evs[1])
	}
}
