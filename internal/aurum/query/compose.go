package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calebward/aurum/common/trace"
	"github.com/calebward/aurum/internal/aurum/directory"
	"github.com/calebward/aurum/internal/aurum/nlp"
)

// summaryMaxTokens caps result-summary completions; one or two sentences
// never need more.
const summaryMaxTokens = 160

// nameMatches applies the CRM's lenient person-name filter: case-insensitive
// bidirectional containment, so "john" matches "John Doe" and "John Doe Jr."
// matches a stored "John Doe". Tolerates partial and nickname matches in
// both directions.
func nameMatches(filter, candidate string) bool {
	f := strings.ToLower(strings.TrimSpace(filter))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if f == "" || c == "" {
		return false
	}
	return strings.Contains(c, f) || strings.Contains(f, c)
}

// summarize requests a one- or two-sentence natural-language summary of a
// result set from the oracle. description is a deterministic account of
// what happened (counts, filters); the oracle only rephrases it.
//
// Any oracle failure degrades to the deterministic fallback text; a summary
// is presentation, never worth failing a request over.
func (e *Engine) summarize(ctx context.Context, userID, description, fallback string) string {
	result, err := e.completer.Complete(ctx, nlp.CompletionRequest{
		System:    nlp.SummaryPrompt(),
		User:      description,
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		slog.Debug("summary call degraded to deterministic text",
			"request", trace.RequestID(ctx), "err", err)
		return fallback
	}
	e.budget.Record(ctx, userID, result.Usage)

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return fallback
	}
	return text
}

// resultCountSentence is the deterministic fallback summary shared by the
// data-fetching handlers.
func resultCountSentence(count int, what, filter string) string {
	var sb strings.Builder
	switch count {
	case 0:
		sb.WriteString("I found no " + what)
	case 1:
		sb.WriteString("I found 1 " + strings.TrimSuffix(what, "s"))
	default:
		fmt.Fprintf(&sb, "I found %d %s", count, what)
	}
	if filter != "" {
		fmt.Fprintf(&sb, " matching %q", filter)
	}
	sb.WriteString(".")
	return sb.String()
}

// describeFetch builds the deterministic result description handed to the
// summary oracle call.
func describeFetch(count int, what, filter string, extras ...string) string {
	desc := resultCountSentence(count, what, filter)
	for _, extra := range extras {
		if extra != "" {
			desc += " " + extra
		}
	}
	return desc
}

// plural appends "s" for counts other than one.
func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// --- row builders -----------------------------------------------------------

func clientRows(clients []directory.Client) []Row {
	rows := make([]Row, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, Row{
			"id":     c.ID,
			"name":   c.FullName(),
			"email":  c.Email,
			"phone":  c.Phone,
			"status": c.Status,
		})
	}
	return rows
}

func transactionRows(txns []directory.Transaction) []Row {
	rows := make([]Row, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, Row{
			"id":          t.ID,
			"clientId":    t.ClientID,
			"type":        t.Type,
			"amount":      t.Amount,
			"currency":    t.Currency,
			"date":        t.Date,
			"description": t.Description,
		})
	}
	return rows
}

func userRows(users []directory.User) []Row {
	rows := make([]Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, Row{
			"id":       u.ID,
			"name":     u.FullName(),
			"email":    u.Email,
			"username": u.Username,
			"role":     u.RoleTag,
		})
	}
	return rows
}
