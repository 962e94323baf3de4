package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/calebward/aurum/internal/aurum/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "aurum.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUsageAccumulates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	used, err := s.UsedToday(ctx, "u1")
	if err != nil || used != 0 {
		t.Fatalf("fresh user: used = %d, err = %v", used, err)
	}

	if err := s.RecordUsage(ctx, "u1", 120); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if err := s.RecordUsage(ctx, "u1", 80); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	used, err = s.UsedToday(ctx, "u1")
	if err != nil {
		t.Fatalf("UsedToday: %v", err)
	}
	if used != 200 {
		t.Errorf("used = %d, want 200", used)
	}
}

func TestUsageIsolatedPerUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.RecordUsage(ctx, "u1", 50); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	used, err := s.UsedToday(ctx, "u2")
	if err != nil || used != 0 {
		t.Errorf("u2 used = %d, err = %v; want 0", used, err)
	}
}

func TestRecordUsageIgnoresNonPositive(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.RecordUsage(ctx, "u1", 0); err != nil {
		t.Fatalf("RecordUsage(0): %v", err)
	}
	if err := s.RecordUsage(ctx, "u1", -5); err != nil {
		t.Fatalf("RecordUsage(-5): %v", err)
	}
	used, _ := s.UsedToday(ctx, "u1")
	if used != 0 {
		t.Errorf("used = %d, want 0", used)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aurum.db")

	s1, err := store.New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s1.RecordUsage(context.Background(), "u1", 10); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	s1.Close()

	s2, err := store.New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	used, err := s2.UsedToday(context.Background(), "u1")
	if err != nil || used != 10 {
		t.Errorf("usage should survive reopen: used = %d, err = %v", used, err)
	}
}
