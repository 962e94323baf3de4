package query_test

import (
	"testing"

	"github.com/calebward/aurum/internal/aurum/query"
)

func TestNormalizeMarkdownLists(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{
			"insertBlankBeforeNumbered",
			"You can ask:\n1. show clients\n2. list transactions",
			"You can ask:\n\n1. show clients\n2. list transactions",
		},
		{
			"insertBlankBeforeBulleted",
			"Options:\n- clients\n- transactions",
			"Options:\n\n- clients\n- transactions",
		},
		{
			"collapseBlankRuns",
			"Hello.\n\n\n\nGoodbye.",
			"Hello.\n\nGoodbye.",
		},
		{
			"alreadySpaced",
			"You can ask:\n\n1. show clients",
			"You can ask:\n\n1. show clients",
		},
		{
			"noLists",
			"Just a sentence.",
			"Just a sentence.",
		},
		{
			"parenNumbering",
			"Try:\n1) clients",
			"Try:\n\n1) clients",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := query.NormalizeMarkdownLists(tc.in); got != tc.want {
				t.Errorf("NormalizeMarkdownLists(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
