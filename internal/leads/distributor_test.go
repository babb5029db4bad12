package leads

import (
	"errors"
	"fmt"
	"testing"
)

func rowsN(n int) []NewLead {
	out := make([]NewLead, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NewLead{
			CompanyName: fmt.Sprintf("Company %d", i),
			Phone:       fmt.Sprintf("+3312345%04d", i),
		})
	}
	return out
}

func TestDistribute_RoundRobinSevenAcrossThree(t *testing.T) {
	batch, err := Distribute(rowsN(7), []string{"A", "B", "C"}, 1)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}

	byCallerOrders := map[string][]int64{}
	for _, l := range batch {
		byCallerOrders[l.AssignedTo] = append(byCallerOrders[l.AssignedTo], l.Order)
	}

	want := map[string][]int64{
		"A": {1, 4, 7},
		"B": {2, 5},
		"C": {3, 6},
	}
	for caller, orders := range want {
		got := byCallerOrders[caller]
		if len(got) != len(orders) {
			t.Fatalf("caller %s: expected orders %v, got %v", caller, orders, got)
		}
		for i := range orders {
			if got[i] != orders[i] {
				t.Fatalf("caller %s: expected orders %v, got %v", caller, orders, got)
			}
		}
	}
}

func TestDistribute_OrdersAreContiguousFromStart(t *testing.T) {
	batch, err := Distribute(rowsN(12), []string{"A", "B", "C", "D", "E"}, 101)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	for i, l := range batch {
		if l.Order != 101+int64(i) {
			t.Fatalf("lead %d: expected order %d, got %d", i, 101+i, l.Order)
		}
		if l.Status != StatusPending {
			t.Fatalf("lead %d: expected pending, got %s", i, l.Status)
		}
	}
}

func TestDistribute_SplitDiffersByAtMostOne(t *testing.T) {
	for _, tc := range []struct{ n, callers int }{
		{1, 1}, {1, 4}, {5, 2}, {10, 3}, {17, 5}, {100, 7},
	} {
		callers := make([]string, 0, tc.callers)
		for i := 0; i < tc.callers; i++ {
			callers = append(callers, fmt.Sprintf("c%d", i))
		}
		batch, err := Distribute(rowsN(tc.n), callers, 1)
		if err != nil {
			t.Fatalf("distribute %d/%d: %v", tc.n, tc.callers, err)
		}

		counts := map[string]int{}
		for _, l := range batch {
			counts[l.AssignedTo]++
		}
		min, max := tc.n, 0
		for _, c := range callers {
			n := counts[c]
			if n < min {
				min = n
			}
			if n > max {
				max = n
			}
		}
		if max-min > 1 {
			t.Fatalf("%d leads / %d callers: uneven split %v", tc.n, tc.callers, counts)
		}
	}
}

func TestDistribute_RejectsEmptyCallerList(t *testing.T) {
	if _, err := Distribute(rowsN(3), nil, 1); !errors.Is(err, ErrNoActiveCallers) {
		t.Fatalf("expected ErrNoActiveCallers, got %v", err)
	}
}

func TestDistribute_RejectsInvalidRows(t *testing.T) {
	rows := []NewLead{{CompanyName: "Acme", Phone: ""}}
	if _, err := Distribute(rows, []string{"A"}, 1); !errors.Is(err, ErrInvalidLead) {
		t.Fatalf("expected ErrInvalidLead, got %v", err)
	}
}
