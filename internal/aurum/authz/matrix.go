package authz

import (
	"github.com/calebward/aurum/internal/aurum/nlp"
)

// Decision is the outcome of one permission check. When Allowed is false,
// Guidance carries a suggestion naming a query the caller's role CAN make;
// it never describes categories the caller is forbidden to see.
type Decision struct {
	Allowed  bool
	Guidance string
}

// allow is the shared allowed decision.
var allow = Decision{Allowed: true}

// Check applies the permission matrix to (role, category, scope).
//
// Scope only participates for account questions: personal accounts are
// answerable by every role (each routed to its own slice of data), broad
// accounts only by the root admin. CategoryGeneral and CategoryUnknown are
// allowed for everyone: unknown questions flow through the keyword cascade
// and each concrete handler re-checks its own row.
func Check(role Role, category nlp.Category, scope nlp.Scope) Decision {
	switch category {
	case nlp.CategoryClient, nlp.CategoryTransaction:
		if role == RoleAgent {
			return allow
		}
	case nlp.CategoryAccount:
		if scope != nlp.ScopeBroad {
			return allow
		}
		if role == RoleRootAdmin {
			return allow
		}
	case nlp.CategoryAgent:
		if role == RoleAdmin || role == RoleRootAdmin {
			return allow
		}
	case nlp.CategoryAdmin, nlp.CategoryCombinedUsers:
		if role == RoleRootAdmin {
			return allow
		}
	case nlp.CategoryGeneral, nlp.CategoryUnknown:
		return allow
	}
	return Decision{Allowed: false, Guidance: Guidance(role, category)}
}

// guidanceKey indexes the denial-guidance table.
type guidanceKey struct {
	role     Role
	category nlp.Category
}

// guidanceTable maps each denied (role, category) pair to a suggestion
// naming only queries that role is permitted to make. Kept declarative so
// the matrix and its messaging can be reviewed and tested independently of
// the dispatch code.
// The wording deliberately avoids naming what was asked for: a denial must
// not confirm that the forbidden data exists or is queryable by anyone.
var guidanceTable = map[guidanceKey]string{
	// Agents work their own book: clients, transactions, personal accounts.
	{RoleAgent, nlp.CategoryAgent}:         `That's outside what I can look up for you — try "show my clients" or "list my transactions".`,
	{RoleAgent, nlp.CategoryAdmin}:         `That's outside what I can look up for you — try "show my clients" or "list my transactions".`,
	{RoleAgent, nlp.CategoryCombinedUsers}: `That's outside what I can look up for you — try "show my clients" or "list my transactions".`,
	{RoleAgent, nlp.CategoryAccount}:       `I can only show accounts you manage — try "show my accounts" or "show my clients".`,

	// Admins see the agents they created, nothing client-facing.
	{RoleAdmin, nlp.CategoryClient}:        `That's outside what I can look up for you — try "show my agents".`,
	{RoleAdmin, nlp.CategoryTransaction}:   `That's outside what I can look up for you — try "show my agents".`,
	{RoleAdmin, nlp.CategoryAdmin}:         `That's outside what I can look up for you — try "show my agents".`,
	{RoleAdmin, nlp.CategoryCombinedUsers}: `That's outside what I can look up for you — try "show my agents".`,
	{RoleAdmin, nlp.CategoryAccount}:       `I can only show the accounts you manage — try "show my agents" or "show agents I manage".`,

	// Root admins see the user directory, never client or transaction data.
	{RoleRootAdmin, nlp.CategoryClient}:      `That's outside what I can look up for you — try "show all agents and admins".`,
	{RoleRootAdmin, nlp.CategoryTransaction}: `That's outside what I can look up for you — try "show all agents and admins".`,
}

// Guidance returns the denial suggestion for (role, category). Pairs outside
// the table get a generic suggestion that is safe for every role.
func Guidance(role Role, category nlp.Category) string {
	if g, ok := guidanceTable[guidanceKey{role, category}]; ok {
		return g
	}
	return `I can't help with that kind of question for your role. Try asking "what can you do?" to see what I can look up for you.`
}

// AccountRoute names the handler an allowed account question delegates to.
type AccountRoute int

const (
	// RouteClients sends the caller to their own client list.
	RouteClients AccountRoute = iota
	// RouteAgents sends the caller to the agents they manage.
	RouteAgents
	// RouteCombinedUsers sends the caller to the full agent+admin directory.
	RouteCombinedUsers
)

// AccountRouteFor resolves where an ALLOWED account question lands for the
// given role and scope. "Accounts" means a different slice of the CRM per
// role: an agent's accounts are their clients, an admin's are their agents,
// and a root admin's are all directory users.
func AccountRouteFor(role Role, scope nlp.Scope) AccountRoute {
	if scope == nlp.ScopeBroad {
		// Only the root admin passes Check for broad scope.
		return RouteCombinedUsers
	}
	switch role {
	case RoleAgent:
		return RouteClients
	case RoleAdmin:
		return RouteAgents
	default:
		return RouteCombinedUsers
	}
}
