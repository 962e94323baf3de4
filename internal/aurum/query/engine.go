package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/calebward/aurum/common/trace"
	"github.com/calebward/aurum/internal/aurum/authz"
	"github.com/calebward/aurum/internal/aurum/directory"
	"github.com/calebward/aurum/internal/aurum/nlp"
)

// DataService is the slice of the directory client the engine needs.
// *directory.Service satisfies it; tests substitute a stub.
type DataService interface {
	Clients(ctx context.Context, authToken string) ([]directory.Client, string, error)
	Transactions(ctx context.Context, authToken string, clientIDs []string) ([]directory.Transaction, string, error)
	Users(ctx context.Context, authToken string) ([]directory.User, string, error)
}

// Engine is the query dispatcher. One Engine serves all requests; it holds
// no per-request state.
type Engine struct {
	classifier *nlp.Classifier
	completer  nlp.Completer
	data       DataService
	limiter    *nlp.RateLimiter
	budget     *nlp.TokenBudget
}

// New assembles an Engine from its collaborators.
func New(classifier *nlp.Classifier, completer nlp.Completer, data DataService, limiter *nlp.RateLimiter, budget *nlp.TokenBudget) *Engine {
	return &Engine{
		classifier: classifier,
		completer:  completer,
		data:       data,
		limiter:    limiter,
		budget:     budget,
	}
}

// request bundles the per-request inputs handed to every handler.
type request struct {
	intent    *nlp.QueryIntent
	rawText   string
	authToken string
	user      authz.UserContext
}

// ProcessQuery answers one free-text question for an authenticated caller.
//
// The only error it returns is oracle transport failure during the top-level
// classification call (wrapping nlp.ErrUnavailable or nlp.ErrRateLimit):
// without classification no further guess is trustworthy, so that one case
// surfaces to the transport layer as an error response. Every other failure
// (denial, unusable classification, downstream fetch trouble, summary
// trouble) degrades to a well-formed QueryResponse with a readable
// sentence.
func (e *Engine) ProcessQuery(ctx context.Context, queryText, authToken string, user authz.UserContext) (*QueryResponse, error) {
	if strings.TrimSpace(queryText) == "" {
		return newResponse(nlp.CategoryGeneral,
			`Ask me a question about your CRM data, or try "what can you do?".`), nil
	}

	if !e.limiter.Allow(user.UserID) {
		return &QueryResponse{
			NaturalLanguageResponse: nlp.RateLimitMessage,
			QueryType:               QueryTypeError,
			Results:                 []Row{},
		}, nil
	}
	if !e.budget.Allow(ctx, user.UserID) {
		return &QueryResponse{
			NaturalLanguageResponse: nlp.BudgetExceededMessage,
			QueryType:               QueryTypeError,
			Results:                 []Row{},
		}, nil
	}

	cls, err := e.classifier.Classify(ctx, queryText)
	if err != nil {
		return nil, err
	}
	e.budget.Record(ctx, user.UserID, cls.Usage)

	intent := cls.Intent
	if cls.Degraded {
		// The oracle answered unusably; the deterministic keyword cascade
		// decides instead. It always lands on some category.
		intent = &nlp.QueryIntent{
			Category: FallbackCategory(queryText, user.Role),
			Scope:    nlp.ScopeNone,
		}
		slog.Info("classification degraded to keyword cascade",
			"request", trace.RequestID(ctx), "category", intent.Category)
	}

	req := &request{
		intent:    intent,
		rawText:   queryText,
		authToken: authToken,
		user:      user,
	}

	slog.Info("dispatching query",
		"request", trace.RequestID(ctx),
		"user", user.UserID,
		"role", user.Role,
		"category", intent.Category,
		"scope", intent.Scope,
	)
	return e.dispatch(ctx, req), nil
}

// dispatch routes the classified request to its category handler. The
// switch is exhaustive over the closed Category set; anything else has
// already collapsed to CategoryUnknown.
func (e *Engine) dispatch(ctx context.Context, req *request) *QueryResponse {
	switch req.intent.Category {
	case nlp.CategoryClient:
		return e.handleClient(ctx, req)
	case nlp.CategoryTransaction:
		return e.handleTransaction(ctx, req)
	case nlp.CategoryAccount:
		return e.handleAccount(ctx, req)
	case nlp.CategoryAgent:
		return e.handleUserRole(ctx, req, nlp.CategoryAgent, "agent")
	case nlp.CategoryAdmin:
		return e.handleUserRole(ctx, req, nlp.CategoryAdmin, "admin")
	case nlp.CategoryCombinedUsers:
		return e.handleCombinedUsers(ctx, req)
	case nlp.CategoryGeneral:
		return e.handleGeneral(ctx, req)
	default:
		return e.handleUnknown(ctx, req)
	}
}
