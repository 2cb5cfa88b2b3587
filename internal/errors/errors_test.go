package errors

import (
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("expected 0 for nil error, got %d", got)
	}
	if got := ExitCode(New(CodeNotConfigured, "missing key")); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
	if got := ExitCode(fmt.Errorf("plain")); got != 1 {
		t.Fatalf("expected internal code for plain error, got %d", got)
	}
}

func TestWrapPreservesCodeThroughWrapping(t *testing.T) {
	inner := New(CodeRateLimited, "provider rate limited request")
	outer := fmt.Errorf("balances: %w", inner)
	if CodeOf(outer) != CodeRateLimited {
		t.Fatalf("expected rate limited code, got %d", CodeOf(outer))
	}
	if Kind(outer) != "provider failure" {
		t.Fatalf("unexpected kind: %s", Kind(outer))
	}
}

func TestIsNotConfigured(t *testing.T) {
	if !IsNotConfigured(New(CodeNotConfigured, "missing")) {
		t.Fatal("expected not-configured")
	}
	if IsNotConfigured(New(CodeUnavailable, "down")) {
		t.Fatal("remote failure must not count as not-configured")
	}
}
