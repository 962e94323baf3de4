package nlp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Category is the classified kind of question. It is a closed enumeration;
// ParseIntent rejects oracle output naming anything outside it, so the
// dispatcher stays exhaustive.
type Category string

const (
	// CategoryClient asks about client records.
	CategoryClient Category = "client"
	// CategoryTransaction asks about transaction records.
	CategoryTransaction Category = "transaction"
	// CategoryAccount asks about "accounts" in the loose banking sense; it
	// is routed per role and scope rather than fetched directly.
	CategoryAccount Category = "account"
	// CategoryAgent asks about agent users.
	CategoryAgent Category = "agent"
	// CategoryAdmin asks about admin users.
	CategoryAdmin Category = "admin"
	// CategoryCombinedUsers asks about agents and admins together.
	CategoryCombinedUsers Category = "combinedUsers"
	// CategoryGeneral is an open question about the assistant's abilities.
	CategoryGeneral Category = "general"
	// CategoryUnknown means no category could be determined.
	CategoryUnknown Category = "unknown"
)

// Scope is the implied breadth of a question: the caller's own slice of the
// data (personal), everything (broad), or not applicable (none).
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeBroad    Scope = "broad"
	ScopeNone     Scope = "none"
)

// Parameter keys the classifier may populate.
const (
	ParamClientName      = "clientName"
	ParamStartDate       = "startDate"
	ParamEndDate         = "endDate"
	ParamTransactionType = "transactionType"
)

// QueryIntent is the structured interpretation of one free-text question.
// It is produced once per request and never mutated afterwards.
type QueryIntent struct {
	// Category is never empty; absent or unparseable input yields
	// CategoryUnknown.
	Category Category

	// Scope qualifies account questions; ScopeNone elsewhere.
	Scope Scope

	// Parameters holds optional entity-name filters, date bounds, and a
	// transaction-type filter. A literal "null" from the oracle is
	// normalized to an absent key before the intent is returned.
	Parameters map[string]string
}

// Parameter returns the named parameter, trimmed, with "" for absent keys.
func (q *QueryIntent) Parameter(key string) string {
	if q.Parameters == nil {
		return ""
	}
	return strings.TrimSpace(q.Parameters[key])
}

// UnknownIntent returns the intent used when classification produced nothing
// usable.
func UnknownIntent() *QueryIntent {
	return &QueryIntent{Category: CategoryUnknown, Scope: ScopeNone}
}

// intentSchema validates the oracle's classification JSON before decoding.
// Keeping validation separate from decoding gives a precise malformed-output
// signal instead of silently zero-valued fields.
const intentSchema = `{
  "type": "object",
  "properties": {
    "type": {"type": "string"},
    "scope": {"type": ["string", "null"]},
    "parameters": {
      "type": ["object", "null"],
      "additionalProperties": {"type": ["string", "null"]}
    }
  },
  "required": ["type"]
}`

var compiledIntentSchema = jsonschema.MustCompileString("intent.schema.json", intentSchema)

// intentWire is the JSON shape the classification prompt instructs the
// oracle to produce.
type intentWire struct {
	Type       string             `json:"type"`
	Scope      *string            `json:"scope"`
	Parameters map[string]*string `json:"parameters"`
}

// ParseIntent decodes a raw oracle completion into a QueryIntent.
//
// The oracle frequently wraps its JSON in Markdown code fences and renders
// absent parameters as the literal string "null"; both quirks are normalized
// here. A fenced payload must parse identically to the bare JSON.
//
// Errors wrap ErrMalformedOutput; callers fall back to the keyword cascade
// rather than propagating them.
func ParseIntent(raw string) (*QueryIntent, error) {
	cleaned := StripCodeFence(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("nlp: empty classification output: %w", ErrMalformedOutput)
	}

	var instance any
	if err := json.Unmarshal([]byte(cleaned), &instance); err != nil {
		return nil, fmt.Errorf("nlp: decode classification JSON: %w: %w", ErrMalformedOutput, err)
	}
	if err := compiledIntentSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("nlp: classification JSON failed schema: %w: %w", ErrMalformedOutput, err)
	}

	var wire intentWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("nlp: decode classification JSON: %w: %w", ErrMalformedOutput, err)
	}
	if strings.TrimSpace(wire.Type) == "" {
		return nil, fmt.Errorf("nlp: classification missing type field: %w", ErrMalformedOutput)
	}

	// A type outside the closed set is unusable output, not an unknown
	// question: only a literal "unknown" from the oracle means "no category
	// could be determined". Anything else degrades to the keyword cascade.
	category := ParseCategory(wire.Type)
	if category == CategoryUnknown && strings.TrimSpace(wire.Type) != string(CategoryUnknown) {
		return nil, fmt.Errorf("nlp: classification type %q outside the category set: %w", wire.Type, ErrMalformedOutput)
	}

	intent := &QueryIntent{
		Category: category,
		Scope:    parseScope(wire.Scope),
	}
	for key, val := range wire.Parameters {
		if val == nil {
			continue
		}
		v := strings.TrimSpace(*val)
		// The oracle sometimes renders JSON null as the string "null".
		if v == "" || strings.EqualFold(v, "null") {
			continue
		}
		if intent.Parameters == nil {
			intent.Parameters = make(map[string]string)
		}
		intent.Parameters[key] = v
	}
	return intent, nil
}

// ParseCategory maps a raw category string onto the closed Category set.
// Unrecognized values collapse to CategoryUnknown.
func ParseCategory(s string) Category {
	switch strings.TrimSpace(s) {
	case string(CategoryClient):
		return CategoryClient
	case string(CategoryTransaction):
		return CategoryTransaction
	case string(CategoryAccount):
		return CategoryAccount
	case string(CategoryAgent):
		return CategoryAgent
	case string(CategoryAdmin):
		return CategoryAdmin
	case string(CategoryCombinedUsers):
		return CategoryCombinedUsers
	case string(CategoryGeneral):
		return CategoryGeneral
	default:
		return CategoryUnknown
	}
}

func parseScope(s *string) Scope {
	if s == nil {
		return ScopeNone
	}
	switch strings.TrimSpace(*s) {
	case string(ScopePersonal):
		return ScopePersonal
	case string(ScopeBroad):
		return ScopeBroad
	default:
		return ScopeNone
	}
}

// StripCodeFence removes a leading/trailing Markdown triple-backtick fence
// (with optional language tag) from s. Content without a fence is returned
// unchanged apart from surrounding whitespace.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag ("json", "JSON", …) up to the first newline.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// isLanguageTag reports whether the first fence line looks like a language
// tag rather than payload (letters only, short).
func isLanguageTag(line string) bool {
	if len(line) > 16 {
		return false
	}
	for _, r := range line {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
