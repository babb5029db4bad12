package callers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreate_RejectsInvalidArgs(t *testing.T) {
	svc := NewService(NewMemoryStore())

	if _, err := svc.Create(context.Background(), CreateRequest{Name: "", Email: "a@b.c", Role: "caller"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateRequest{Name: "A", Email: "a@b.c", Role: "janitor"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown role, got %v", err)
	}
}

func TestCreate_RejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryStore())

	if _, err := svc.Create(context.Background(), CreateRequest{Name: "A", Email: "a@b.c", Role: "caller"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateRequest{Name: "B", Email: "A@B.C", Role: "caller"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestActiveCallerIDs_OrderIsStable(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)

	base := time.Unix(1700000000, 0).UTC()
	seed := []Caller{
		{ID: "c", Name: "C", Email: "c@x", Role: "caller", IsActive: true, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "a", Name: "A", Email: "a@x", Role: "caller", IsActive: true, CreatedAt: base},
		{ID: "b", Name: "B", Email: "b@x", Role: "caller", IsActive: true, CreatedAt: base.Add(time.Minute)},
		{ID: "d", Name: "D", Email: "d@x", Role: "caller", IsActive: false, CreatedAt: base},
		{ID: "s", Name: "S", Email: "s@x", Role: "supervisor", IsActive: true, CreatedAt: base},
	}
	for _, c := range seed {
		if err := store.Create(context.Background(), c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	ids, err := svc.ActiveCallerIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestSetActive_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if err := svc.SetActive(context.Background(), "ghost", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
