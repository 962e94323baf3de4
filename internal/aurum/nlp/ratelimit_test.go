package nlp_test

import (
	"testing"
	"time"

	"github.com/calebward/aurum/internal/aurum/nlp"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := nlp.NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("u1") {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if rl.Allow("u1") {
		t.Error("fourth call should be denied")
	}
	if rl.Remaining("u1") != 0 {
		t.Errorf("Remaining = %d, want 0", rl.Remaining("u1"))
	}
}

func TestRateLimiterIsolatesCallers(t *testing.T) {
	rl := nlp.NewRateLimiter(1, time.Minute)

	if !rl.Allow("u1") {
		t.Fatal("u1 first call should be allowed")
	}
	if !rl.Allow("u2") {
		t.Error("u2 must not be affected by u1's usage")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := nlp.NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("u1") {
		t.Fatal("first call should be allowed")
	}
	if rl.Allow("u1") {
		t.Fatal("second immediate call should be denied")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Error("call after window expiry should be allowed")
	}
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := nlp.NewRateLimiter(0, 0)
	if rl.Remaining("u1") != nlp.DefaultRateLimit {
		t.Errorf("Remaining = %d, want %d", rl.Remaining("u1"), nlp.DefaultRateLimit)
	}
}
