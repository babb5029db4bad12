package utils

import (
	"context"
	"testing"
	"time"
)

func TestLeaseReleaseScriptCompiles(t *testing.T) {
	// Compile-time smoke test: script should be initialized.
	if leaseReleaseScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestAcquireLease_RejectsInvalidArgs(t *testing.T) {
	if _, _, err := AcquireLease(context.Background(), nil, "k", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ReleaseLease(context.Background(), nil, "k", "tok"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
