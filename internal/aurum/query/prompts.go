package query

import "github.com/calebward/aurum/internal/aurum/authz"

// generalMaxTokens caps conversational completions.
const generalMaxTokens = 512

// generalPromptTmpl frames open capability questions. The single verb
// substituted is the role-specific capability description.
const generalPromptTmpl = `You are Aurum, a banking CRM assistant. The user is asking an open question
about what you can do or how to use you. Answer conversationally and
concisely in plain language.

For this user's role: %s

Only describe abilities listed above. Never mention data or queries outside
that list, and never invent features. If you use a list, keep it short.`

// unknownPromptTmpl frames questions that did not match a known category.
const unknownPromptTmpl = `You are Aurum, a banking CRM assistant. The user's question did not match any
kind of data question you know how to answer. Reply briefly and helpfully:
acknowledge you could not map the question to CRM data, then suggest what
they can ask instead.

For this user's role: %s

Only suggest abilities listed above. Never mention data or queries outside
that list.`

// roleCapabilities describes what each role may ask for, used both inside
// oracle prompts and as the deterministic degraded answer. Wording must
// stay inside the permission matrix: it never names a category the role
// cannot query.
func roleCapabilities(role authz.Role) string {
	switch role {
	case authz.RoleAgent:
		return `they can ask about their own clients ("show my clients"), their clients' transactions ("list transactions for John"), and the accounts they manage.`
	case authz.RoleAdmin:
		return `they can ask about the agents they manage ("show my agents") and the accounts they manage.`
	default:
		return `they can ask about agents, admins, and all accounts ("show all agents and admins").`
	}
}

// cannedCapabilityMessage is the deterministic fallback when the oracle
// cannot phrase a conversational answer.
func cannedCapabilityMessage(role authz.Role) string {
	switch role {
	case authz.RoleAgent:
		return `I can help you look at your own clients, their transactions, and the accounts you manage. Try "show my clients" or "list my transactions".`
	case authz.RoleAdmin:
		return `I can help you look at the agents you manage and your accounts. Try "show my agents".`
	default:
		return `I can help you look at agents, admins, and all accounts. Try "show all agents and admins".`
	}
}
