package redact_test

import (
	"strings"
	"testing"

	"github.com/calebward/aurum/common/redact"
)

func TestString(t *testing.T) {
	line := "authorization failed for token sk-abc123def"
	got := redact.String(line, "sk-abc123def")
	if strings.Contains(got, "sk-abc123def") {
		t.Errorf("token leaked: %q", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Errorf("placeholder missing: %q", got)
	}
}

func TestStringSkipsShortValues(t *testing.T) {
	line := "a or b"
	if got := redact.String(line, "a"); got != line {
		t.Errorf("short value should not be redacted, got %q", got)
	}
}

func TestBearerToken(t *testing.T) {
	if got := redact.BearerToken("eyJhbGciOiJIUzI1NiJ9"); got != "eyJh…" {
		t.Errorf("BearerToken = %q", got)
	}
	if got := redact.BearerToken("abc"); got != "[REDACTED]" {
		t.Errorf("BearerToken short = %q", got)
	}
}
