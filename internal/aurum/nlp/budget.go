package nlp

import (
	"context"
	"log/slog"
)

// DefaultTokenBudget is the maximum number of oracle tokens allowed per
// caller per UTC day when no explicit budget is configured. 50 000
// tokens/day is sufficient for ~100 moderate queries (gpt-4o-mini) while
// keeping costs low.
const DefaultTokenBudget = 50_000

// UsageLedger records per-caller oracle token consumption. The production
// implementation persists to SQLite so a restart does not reset spend.
type UsageLedger interface {
	// RecordUsage adds tokens to userID's running total for the current
	// UTC day.
	RecordUsage(ctx context.Context, userID string, tokens int) error

	// UsedToday returns the tokens userID has consumed in the current
	// UTC day.
	UsedToday(ctx context.Context, userID string) (int, error)
}

// TokenBudget enforces a per-caller daily oracle token budget on top of a
// UsageLedger.
//
// Callers should:
//  1. Call Allow before issuing an oracle request; it returns false when the
//     caller has already exhausted today's allocation.
//  2. Call Record after a successful oracle call to update the ledger.
//
// Ledger errors fail open: a broken ledger must not take the assistant down
// with it, so Allow logs and permits, and Record logs and drops.
type TokenBudget struct {
	ledger UsageLedger
	budget int
}

// NewTokenBudget returns a TokenBudget that allows at most dailyBudget
// tokens per caller per UTC day. If dailyBudget ≤ 0 it defaults to
// DefaultTokenBudget.
func NewTokenBudget(ledger UsageLedger, dailyBudget int) *TokenBudget {
	if dailyBudget <= 0 {
		dailyBudget = DefaultTokenBudget
	}
	return &TokenBudget{ledger: ledger, budget: dailyBudget}
}

// Budget returns the configured daily token limit per caller.
func (tb *TokenBudget) Budget() int {
	return tb.budget
}

// Allow returns true when userID has not yet exhausted their daily token
// budget. It does NOT consume any tokens; call Record after a successful
// oracle call to record actual usage.
func (tb *TokenBudget) Allow(ctx context.Context, userID string) bool {
	used, err := tb.ledger.UsedToday(ctx, userID)
	if err != nil {
		slog.Warn("token budget: ledger read failed, allowing call", "user", userID, "err", err)
		return true
	}
	return used < tb.budget
}

// Record adds the call's token usage to userID's daily total. Nil usage
// (stub providers) is ignored.
func (tb *TokenBudget) Record(ctx context.Context, userID string, usage *TokenUsage) {
	if usage == nil || usage.TotalTokens == 0 {
		return
	}
	if err := tb.ledger.RecordUsage(ctx, userID, usage.TotalTokens); err != nil {
		slog.Warn("token budget: ledger write failed", "user", userID, "err", err)
	}
}

// Remaining returns the number of tokens userID may still consume today.
// Returns 0 when the budget is exhausted, the full budget on ledger error.
func (tb *TokenBudget) Remaining(ctx context.Context, userID string) int {
	used, err := tb.ledger.UsedToday(ctx, userID)
	if err != nil {
		return tb.budget
	}
	if rem := tb.budget - used; rem > 0 {
		return rem
	}
	return 0
}
