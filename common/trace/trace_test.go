package trace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/calebward/aurum/common/trace"
)

func TestNewRequestIDUnique(t *testing.T) {
	a := trace.NewRequestID()
	b := trace.NewRequestID()
	if a == b {
		t.Fatalf("expected unique IDs, got %q twice", a)
	}
	if !strings.HasPrefix(a, "q_") {
		t.Errorf("expected q_ prefix, got %q", a)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := trace.WithRequestID(context.Background(), "q_test123")
	if got := trace.RequestID(ctx); got != "q_test123" {
		t.Errorf("RequestID = %q, want q_test123", got)
	}
}

func TestAbsent(t *testing.T) {
	if got := trace.RequestID(context.Background()); got != "" {
		t.Errorf("RequestID on empty context = %q, want empty", got)
	}
}
