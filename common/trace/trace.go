// Package trace provides request ID generation and context propagation for
// correlating log lines across the query pipeline (server → classifier →
// handler → data-service call).
package trace

import (
	"context"

	"github.com/google/uuid"
)

// requestKey is the unexported context key used to store the request ID.
type requestKey struct{}

// NewRequestID returns a fresh request correlation ID.
func NewRequestID() string {
	return "q_" + uuid.NewString()
}

// WithRequestID returns a child context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

// RequestID extracts the request ID from ctx, returning "" if absent.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestKey{}).(string); ok {
		return v
	}
	return ""
}
