// Package nlp provides the natural-language layer of the Aurum assistant.
//
// It has two responsibilities: translating a free-form question into a
// structured QueryIntent (classification) and producing short natural-language
// summaries of query results. Both go through the same text-completion
// oracle, which is treated as an unreliable, latent, rate-limited black box
// behind the Completer interface.
//
// Security invariants:
//   - The oracle only classifies and summarizes; it never authorizes.
//     Every data fetch still flows through the permission matrix.
//   - The oracle is shown the question text and result counts only; it never
//     sees bearer tokens or raw account credentials.
//   - Rate limiting and a daily token budget bound spend per caller.
package nlp

import (
	"context"
	"errors"
)

// ErrRateLimit is returned by a Completer when the upstream oracle API
// reports a rate-limiting condition (e.g. HTTP 429 Too Many Requests).
// Callers should surface a user-visible message instead of silently falling
// back, because the question was understood but cannot be answered right now.
var ErrRateLimit = errors.New("nlp: upstream rate limit exceeded")

// ErrMalformedOutput is returned when the oracle produced a structurally
// valid HTTP response whose body cannot be interpreted (JSON parse failure,
// unexpected schema). Classification callers degrade to the keyword cascade.
var ErrMalformedOutput = errors.New("nlp: malformed response from oracle")

// ErrUnavailable is returned when the oracle cannot be reached at all
// (transport error, 5xx, timeout). This is the one failure class that the
// top-level query entry point surfaces as an error response: without
// classification no further guess is trustworthy.
var ErrUnavailable = errors.New("nlp: oracle unavailable")

// CompletionRequest is a single oracle round trip: a fixed system
// instruction plus the user-supplied text.
type CompletionRequest struct {
	// System is the instruction prompt framing the task.
	System string

	// User is the raw caller-supplied text.
	User string

	// MaxTokens caps the completion length. Zero means the provider default.
	MaxTokens int

	// JSONOutput requests strict JSON-object output from providers that
	// support a JSON response format. Classification sets this; summary
	// calls do not.
	JSONOutput bool
}

// CompletionResult carries the oracle's text plus token accounting.
type CompletionResult struct {
	// Text is the raw completion text.
	Text string

	// Usage holds the token counts reported by the provider for this call.
	// Nil when the provider does not report usage (e.g. test stubs).
	Usage *TokenUsage
}

// TokenUsage carries the token counts reported by the upstream oracle API
// for a single call. Fields are zero-valued when not reported.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the input.
	PromptTokens int
	// CompletionTokens is the number of tokens in the oracle's response.
	CompletionTokens int
	// TotalTokens is PromptTokens + CompletionTokens.
	TotalTokens int
	// Model is the model name as reported by the provider.
	Model string
	// LatencyMS is the observed HTTP round-trip time in milliseconds.
	LatencyMS int64
}

// RateLimitMessage is the reply surfaced to callers who exceed the
// per-minute oracle call limit.
const RateLimitMessage = "I'm handling too many requests from you right now. Please try again in a moment."

// BudgetExceededMessage is the reply surfaced to a caller who has exhausted
// their daily token allowance.
const BudgetExceededMessage = "I've reached my daily conversation limit for your account. Please try again tomorrow."

// Completer is the capability boundary around the text-completion oracle.
//
// Implementations must be safe for concurrent use from multiple goroutines.
// When the oracle is unreachable, implementations return an error wrapping
// ErrUnavailable; callers decide whether to degrade or propagate.
type Completer interface {
	// Complete submits the instruction and user text and returns the
	// oracle's free-form completion.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}
