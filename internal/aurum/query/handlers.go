package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calebward/aurum/common/trace"
	"github.com/calebward/aurum/internal/aurum/authz"
	"github.com/calebward/aurum/internal/aurum/directory"
	"github.com/calebward/aurum/internal/aurum/nlp"
)

// handleClient answers "show my clients" style questions. Agent-only; the
// clients service row-filters to the caller's own book upstream.
func (e *Engine) handleClient(ctx context.Context, req *request) *QueryResponse {
	if d := authz.Check(req.user.Role, nlp.CategoryClient, nlp.ScopeNone); !d.Allowed {
		return denialResponse(nlp.CategoryClient, d.Guidance)
	}

	clients, descriptor, err := e.data.Clients(ctx, req.authToken)
	if err != nil {
		slog.Warn("client fetch failed", "request", trace.RequestID(ctx), "err", err)
		return apologyResponse(nlp.CategoryClient)
	}

	filter := req.intent.Parameter(nlp.ParamClientName)
	if filter != "" {
		kept := clients[:0]
		for _, c := range clients {
			if nameMatches(filter, c.FullName()) {
				kept = append(kept, c)
			}
		}
		clients = kept
	}

	rows := clientRows(clients)
	fallback := resultCountSentence(len(rows), "clients", filter)
	text := e.summarize(ctx, req.user.UserID,
		describeFetch(len(rows), "clients", filter, "These are clients assigned to the asking agent."),
		fallback)

	resp := newResponse(nlp.CategoryClient, text)
	resp.Results = rows
	resp.SQLQuery = descriptor
	return resp
}

// handleTransaction answers transaction questions for agents. It resolves
// the caller's own client-id set first and only then queries transactions
// scoped to that set; the two-hop order is a security boundary, not an
// optimization. A name filter that matches no OWN client must end the
// request before any transaction fetch, so the existence of a same-named
// client in another agent's book never shows.
func (e *Engine) handleTransaction(ctx context.Context, req *request) *QueryResponse {
	if d := authz.Check(req.user.Role, nlp.CategoryTransaction, nlp.ScopeNone); !d.Allowed {
		return denialResponse(nlp.CategoryTransaction, d.Guidance)
	}

	clients, _, err := e.data.Clients(ctx, req.authToken)
	if err != nil {
		slog.Warn("client-id resolution failed", "request", trace.RequestID(ctx), "err", err)
		return apologyResponse(nlp.CategoryTransaction)
	}

	filter := req.intent.Parameter(nlp.ParamClientName)
	clientIDs := make([]string, 0, len(clients))
	for _, c := range clients {
		if filter != "" && !nameMatches(filter, c.FullName()) {
			continue
		}
		clientIDs = append(clientIDs, c.ID)
	}

	if filter != "" && len(clientIDs) == 0 {
		return newResponse(nlp.CategoryTransaction,
			fmt.Sprintf("I couldn't find any clients matching %q in your book, so there are no transactions to show.", filter))
	}

	txns, descriptor, err := e.data.Transactions(ctx, req.authToken, clientIDs)
	if err != nil {
		slog.Warn("transaction fetch failed", "request", trace.RequestID(ctx), "err", err)
		return apologyResponse(nlp.CategoryTransaction)
	}
	txns = filterTransactions(txns, req.intent)

	rows := transactionRows(txns)
	fallback := resultCountSentence(len(rows), "transactions", filter)
	text := e.summarize(ctx, req.user.UserID,
		describeFetch(len(rows), "transactions", filter, transactionFilterNote(req.intent)),
		fallback)

	resp := newResponse(nlp.CategoryTransaction, text)
	resp.Results = rows
	resp.SQLQuery = descriptor
	return resp
}

// filterTransactions applies the optional type and date-bound parameters.
// Dates compare lexicographically, which is correct for the ISO dates the
// transactions service emits.
func filterTransactions(txns []directory.Transaction, intent *nlp.QueryIntent) []directory.Transaction {
	txnType := intent.Parameter(nlp.ParamTransactionType)
	start := intent.Parameter(nlp.ParamStartDate)
	end := intent.Parameter(nlp.ParamEndDate)
	if txnType == "" && start == "" && end == "" {
		return txns
	}

	kept := txns[:0]
	for _, t := range txns {
		if txnType != "" && !strings.EqualFold(t.Type, txnType) {
			continue
		}
		if start != "" && t.Date != "" && t.Date < start {
			continue
		}
		if end != "" && t.Date != "" && t.Date > end {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func transactionFilterNote(intent *nlp.QueryIntent) string {
	var notes []string
	if v := intent.Parameter(nlp.ParamTransactionType); v != "" {
		notes = append(notes, "type "+v)
	}
	if v := intent.Parameter(nlp.ParamStartDate); v != "" {
		notes = append(notes, "from "+v)
	}
	if v := intent.Parameter(nlp.ParamEndDate); v != "" {
		notes = append(notes, "until "+v)
	}
	if len(notes) == 0 {
		return ""
	}
	return "Filters applied: " + strings.Join(notes, ", ") + "."
}

// handleAccount never fetches data itself; "accounts" means a different
// slice of the CRM per role, so it resolves scope and delegates.
//
// Scope resolution is two-stage: the classifier's verdict (defaulting to
// broad) plus a second-chance keyword scan of the raw text that upgrades
// broad to personal. The scan corrects a known class of oracle
// misclassification; an oracle-assigned personal scope is trusted without a
// keyword.
func (e *Engine) handleAccount(ctx context.Context, req *request) *QueryResponse {
	scope := req.intent.Scope
	if scope == nlp.ScopeNone {
		scope = nlp.ScopeBroad
	}
	if HasPossessiveLanguage(req.rawText) {
		scope = nlp.ScopePersonal
	}

	d := authz.Check(req.user.Role, nlp.CategoryAccount, scope)
	if !d.Allowed {
		return denialResponse(nlp.CategoryAccount, d.Guidance)
	}

	switch authz.AccountRouteFor(req.user.Role, scope) {
	case authz.RouteClients:
		return e.handleClient(ctx, req)
	case authz.RouteAgents:
		return e.handleUserRole(ctx, req, nlp.CategoryAgent, "agent")
	default:
		return e.handleCombinedUsers(ctx, req)
	}
}

// handleUserRole answers agent- and admin-directory questions. The users
// service is fetched once and filtered in-memory by role tag; the upstream
// service already row-filters to what the caller may see (an admin only
// gets agents they created).
func (e *Engine) handleUserRole(ctx context.Context, req *request, category nlp.Category, roleTag string) *QueryResponse {
	if d := authz.Check(req.user.Role, category, nlp.ScopeNone); !d.Allowed {
		return denialResponse(category, d.Guidance)
	}

	users, descriptor, err := e.data.Users(ctx, req.authToken)
	if err != nil {
		slog.Warn("user directory fetch failed", "request", trace.RequestID(ctx), "err", err)
		return apologyResponse(category)
	}

	kept := users[:0]
	for _, u := range users {
		if u.RoleTag == roleTag {
			kept = append(kept, u)
		}
	}
	users = kept

	filter := req.intent.Parameter(nlp.ParamClientName)
	if filter != "" {
		matched := users[:0]
		for _, u := range users {
			if nameMatches(filter, u.FullName()) {
				matched = append(matched, u)
			}
		}
		users = matched

		// A name filter with zero hits needs no oracle phrasing; answer
		// directly and save the round trip.
		if len(users) == 0 {
			return newResponse(category,
				fmt.Sprintf("I couldn't find any %ss matching %q.", roleTag, filter))
		}
	}

	rows := userRows(users)
	fallback := resultCountSentence(len(rows), roleTag+"s", filter)
	text := e.summarize(ctx, req.user.UserID,
		describeFetch(len(rows), roleTag+"s", filter),
		fallback)

	resp := newResponse(category, text)
	resp.Results = rows
	resp.SQLQuery = descriptor
	return resp
}

// handleCombinedUsers answers directory questions spanning both roles. The
// summary is a simple counts-per-role template, so it is synthesized
// deterministically without an oracle call.
func (e *Engine) handleCombinedUsers(ctx context.Context, req *request) *QueryResponse {
	if d := authz.Check(req.user.Role, nlp.CategoryCombinedUsers, req.intent.Scope); !d.Allowed {
		return denialResponse(nlp.CategoryCombinedUsers, d.Guidance)
	}

	users, descriptor, err := e.data.Users(ctx, req.authToken)
	if err != nil {
		slog.Warn("user directory fetch failed", "request", trace.RequestID(ctx), "err", err)
		return apologyResponse(nlp.CategoryCombinedUsers)
	}

	var agents, admins int
	kept := users[:0]
	for _, u := range users {
		switch u.RoleTag {
		case "agent":
			agents++
		case "admin":
			admins++
		default:
			continue
		}
		kept = append(kept, u)
	}
	users = kept

	text := fmt.Sprintf("I found %d %s in the directory: %d %s and %d %s.",
		len(users), plural("user", len(users)),
		agents, plural("agent", agents),
		admins, plural("admin", admins))
	if len(users) == 0 {
		text = "The user directory is empty — no agents or admins to show."
	}

	resp := newResponse(nlp.CategoryCombinedUsers, text)
	resp.Results = userRows(users)
	resp.SQLQuery = descriptor
	return resp
}

// handleGeneral answers open capability questions conversationally. No data
// service is touched; the oracle gets the raw question plus a description of
// what the caller's role can ask for.
func (e *Engine) handleGeneral(ctx context.Context, req *request) *QueryResponse {
	system := fmt.Sprintf(generalPromptTmpl, roleCapabilities(req.user.Role))

	result, err := e.completer.Complete(ctx, nlp.CompletionRequest{
		System:    system,
		User:      req.rawText,
		MaxTokens: generalMaxTokens,
	})
	if err != nil {
		slog.Debug("general answer degraded to canned text",
			"request", trace.RequestID(ctx), "err", err)
		return newResponse(nlp.CategoryGeneral, cannedCapabilityMessage(req.user.Role))
	}
	e.budget.Record(ctx, req.user.UserID, result.Usage)

	text := NormalizeMarkdownLists(strings.TrimSpace(result.Text))
	if text == "" {
		text = cannedCapabilityMessage(req.user.Role)
	}
	return newResponse(nlp.CategoryGeneral, text)
}

// handleUnknown mirrors handleGeneral but frames the prompt around the
// question not matching a known category, and degrades to a per-role canned
// message on any oracle trouble.
func (e *Engine) handleUnknown(ctx context.Context, req *request) *QueryResponse {
	system := fmt.Sprintf(unknownPromptTmpl, roleCapabilities(req.user.Role))

	result, err := e.completer.Complete(ctx, nlp.CompletionRequest{
		System:    system,
		User:      req.rawText,
		MaxTokens: generalMaxTokens,
	})
	if err != nil {
		slog.Debug("unknown-category answer degraded to canned text",
			"request", trace.RequestID(ctx), "err", err)
		return newResponse(nlp.CategoryUnknown, cannedCapabilityMessage(req.user.Role))
	}
	e.budget.Record(ctx, req.user.UserID, result.Usage)

	text := NormalizeMarkdownLists(strings.TrimSpace(result.Text))
	if text == "" {
		text = cannedCapabilityMessage(req.user.Role)
	}
	return newResponse(nlp.CategoryUnknown, text)
}
