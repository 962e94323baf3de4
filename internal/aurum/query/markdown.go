package query

import (
	"strings"
	"unicode"
)

// NormalizeMarkdownLists fixes the two list-spacing quirks the oracle
// regularly produces so downstream renderers display conversational answers
// correctly: a numbered or bulleted list jammed against the preceding
// paragraph gets a blank line inserted, and runs of three or more blank
// lines collapse to exactly one.
func NormalizeMarkdownLists(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines)+4)

	for i, line := range lines {
		if i > 0 && isListItem(line) {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && !isListItem(lines[i-1]) {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}

	joined := strings.Join(out, "\n")
	for strings.Contains(joined, "\n\n\n") {
		joined = strings.ReplaceAll(joined, "\n\n\n", "\n\n")
	}
	return joined
}

// isListItem reports whether the line starts a Markdown list entry:
// "- item", "* item", "1. item", or "1) item".
func isListItem(line string) bool {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
		return true
	}
	i := 0
	for i < len(t) && unicode.IsDigit(rune(t[i])) {
		i++
	}
	if i == 0 || i >= len(t) {
		return false
	}
	return (t[i] == '.' || t[i] == ')') && i+1 < len(t) && t[i+1] == ' '
}
