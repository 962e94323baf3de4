// Package redact provides helpers for stripping credentials from log output
// before it leaves the process boundary.
//
// The assistant forwards the caller's bearer token verbatim to the data
// services and holds an oracle API key; neither may appear in log lines or
// error messages. Redaction is best-effort: it operates on string
// representations and relies on callers to pass the right set of sensitive
// terms. It is NOT a substitute for keeping secrets out of log call-sites in
// the first place.
package redact

import "strings"

const placeholder = "[REDACTED]"

// String replaces every occurrence of each sensitive value in s with
// [REDACTED]. Values shorter than 4 characters are skipped to avoid
// spurious redaction of common substrings.
func String(s string, sensitiveValues ...string) string {
	for _, v := range sensitiveValues {
		if len(v) < 4 {
			continue
		}
		s = strings.ReplaceAll(s, v, placeholder)
	}
	return s
}

// BearerToken shortens an opaque bearer credential to its first four
// characters plus an ellipsis, suitable for correlation in debug logs
// without disclosing the token.
func BearerToken(token string) string {
	if len(token) <= 4 {
		return placeholder
	}
	return token[:4] + "…"
}
