package nlp

import (
	"context"
	"errors"
	"log/slog"
)

// classifyMaxTokens caps classification completions; the intent JSON is tiny
// and a low cap keeps a confused oracle from rambling expensively.
const classifyMaxTokens = 256

// Classifier turns free text into a QueryIntent via the oracle, sanitizing
// the output on the way through.
//
// Failure semantics mirror the two-stage dispatch design:
//   - Transport-level failures (ErrUnavailable, ErrRateLimit) are returned to
//     the caller; without a reachable oracle no classification is possible.
//   - Content-level failures (unparsable JSON, missing type) degrade to a
//     CategoryUnknown intent with a nil error, signalling the caller to run
//     the deterministic keyword cascade instead.
type Classifier struct {
	completer Completer
}

// NewClassifier returns a Classifier backed by completer.
func NewClassifier(completer Completer) *Classifier {
	return &Classifier{completer: completer}
}

// Classification is the outcome of one classify call.
type Classification struct {
	// Intent is never nil; on content-level failure it is the unknown
	// intent and Degraded is set.
	Intent *QueryIntent

	// Degraded is true when the oracle responded but its output was
	// unusable, so the intent came from the default rather than the oracle.
	Degraded bool

	// Usage holds the oracle token accounting for this call, nil when the
	// provider does not report it.
	Usage *TokenUsage
}

// Classify submits text to the oracle and returns the sanitized intent.
// At most one oracle round trip is made; the classification step is never
// retried.
func (c *Classifier) Classify(ctx context.Context, text string) (*Classification, error) {
	result, err := c.completer.Complete(ctx, CompletionRequest{
		System:     classificationPrompt,
		User:       text,
		MaxTokens:  classifyMaxTokens,
		JSONOutput: true,
	})
	if err != nil {
		return nil, err
	}

	intent, err := ParseIntent(result.Text)
	if err != nil {
		// Content-level failure: the oracle answered but not with usable
		// JSON. The keyword cascade takes over; the caller sees no error.
		if !errors.Is(err, ErrMalformedOutput) {
			return nil, err
		}
		slog.Debug("classification output unusable, degrading to keyword cascade", "err", err)
		return &Classification{Intent: UnknownIntent(), Degraded: true, Usage: result.Usage}, nil
	}

	return &Classification{Intent: intent, Usage: result.Usage}, nil
}
