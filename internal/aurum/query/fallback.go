package query

import (
	"strings"

	"github.com/calebward/aurum/internal/aurum/authz"
	"github.com/calebward/aurum/internal/aurum/nlp"
)

// generalPhrases signal an open capability question; checked first so
// "what can you show me about transactions" stays a general question.
var generalPhrases = []string{
	"what can", "what do", "how can", "help", "show me what", "what options",
}

// agentNouns and adminNouns detect role-directory questions. "admin" is a
// prefix of "administrator", so a single contains-check covers both.
var (
	agentNouns = []string{"agent"}
	adminNouns = []string{"admin"}
)

// FallbackCategory is the deterministic keyword cascade used when the
// oracle's classification is unusable. It is evaluated top to bottom, first
// match wins, and it always resolves to some category, never a failure.
//
// The role participates only in the client rule: non-agents have no client
// book, so "client" in their text falls through to the terminal rule.
func FallbackCategory(text string, role authz.Role) nlp.Category {
	lower := strings.ToLower(text)

	for _, phrase := range generalPhrases {
		if strings.Contains(lower, phrase) {
			return nlp.CategoryGeneral
		}
	}

	if containsAny(lower, agentNouns) && containsAny(lower, adminNouns) {
		return nlp.CategoryCombinedUsers
	}

	switch {
	case strings.Contains(lower, "account"):
		return nlp.CategoryAccount
	case strings.Contains(lower, "transaction"):
		return nlp.CategoryTransaction
	case containsAny(lower, agentNouns):
		return nlp.CategoryAgent
	case containsAny(lower, adminNouns):
		return nlp.CategoryAdmin
	case strings.Contains(lower, "client") && role == authz.RoleAgent:
		return nlp.CategoryClient
	default:
		return nlp.CategoryGeneral
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// possessiveKeywords trigger the second-chance personal-scope override for
// account questions, independent of what the oracle decided. The override
// only upgrades broad→personal; an oracle-assigned personal scope is
// trusted as-is even without a keyword.
var possessiveKeywords = []string{
	"my", "mine", "i manage", "i have", "for my", "under me",
}

// HasPossessiveLanguage reports whether the raw text contains
// personal-possessive account language.
func HasPossessiveLanguage(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range possessiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
