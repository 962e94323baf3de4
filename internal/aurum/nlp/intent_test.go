package nlp_test

import (
	"errors"
	"testing"

	"github.com/calebward/aurum/internal/aurum/nlp"
)

func TestParseIntentBasic(t *testing.T) {
	intent, err := nlp.ParseIntent(`{"type":"client","scope":"personal","parameters":{"clientName":"John Doe"}}`)
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if intent.Category != nlp.CategoryClient {
		t.Errorf("Category = %q, want client", intent.Category)
	}
	if intent.Scope != nlp.ScopePersonal {
		t.Errorf("Scope = %q, want personal", intent.Scope)
	}
	if got := intent.Parameter(nlp.ParamClientName); got != "John Doe" {
		t.Errorf("clientName = %q, want John Doe", got)
	}
}

func TestParseIntentFencedRoundTrip(t *testing.T) {
	bare := `{"type":"transaction","scope":"none","parameters":{"clientName":"Ana"}}`
	fenced := "```json\n" + bare + "\n```"
	noTag := "```\n" + bare + "\n```"

	want, err := nlp.ParseIntent(bare)
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	for name, raw := range map[string]string{"fenced": fenced, "noTag": noTag} {
		got, err := nlp.ParseIntent(raw)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.Category != want.Category || got.Scope != want.Scope ||
			got.Parameter(nlp.ParamClientName) != want.Parameter(nlp.ParamClientName) {
			t.Errorf("%s parsed differently: %+v vs %+v", name, got, want)
		}
	}
}

func TestParseIntentNullStringParameters(t *testing.T) {
	intent, err := nlp.ParseIntent(`{"type":"transaction","parameters":{"clientName":"null","startDate":null,"transactionType":"deposit"}}`)
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if got := intent.Parameter(nlp.ParamClientName); got != "" {
		t.Errorf(`literal "null" should be normalized to absent, got %q`, got)
	}
	if got := intent.Parameter(nlp.ParamTransactionType); got != "deposit" {
		t.Errorf("transactionType = %q, want deposit", got)
	}
}

func TestParseIntentLiteralUnknown(t *testing.T) {
	intent, err := nlp.ParseIntent(`{"type":"unknown"}`)
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if intent.Category != nlp.CategoryUnknown {
		t.Errorf("Category = %q, want unknown", intent.Category)
	}
}

func TestParseIntentRejectsOutOfSetCategory(t *testing.T) {
	// Only a literal "unknown" means "no category"; an invented label is
	// unusable output and must degrade to the keyword cascade.
	for _, typ := range []string{"weather", "txn_list", "Unknown"} {
		_, err := nlp.ParseIntent(`{"type":"` + typ + `"}`)
		if !errors.Is(err, nlp.ErrMalformedOutput) {
			t.Errorf("type %q: err = %v, want ErrMalformedOutput", typ, err)
		}
	}
}

func TestParseIntentMalformed(t *testing.T) {
	cases := map[string]string{
		"notJSON":     "sure! here is the classification you asked for",
		"missingType": `{"scope":"broad"}`,
		"emptyType":   `{"type":"  "}`,
		"wrongShape":  `{"type": 42}`,
		"empty":       "",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := nlp.ParseIntent(raw)
			if !errors.Is(err, nlp.ErrMalformedOutput) {
				t.Errorf("err = %v, want ErrMalformedOutput", err)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	if got := nlp.ParseCategory("combinedUsers"); got != nlp.CategoryCombinedUsers {
		t.Errorf("ParseCategory(combinedUsers) = %q", got)
	}
	if got := nlp.ParseCategory("CLIENT"); got != nlp.CategoryUnknown {
		t.Errorf("categories are case-sensitive on the wire, got %q", got)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"jsonTag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"noTag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nlp.StripCodeFence(tc.in); got != tc.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
