package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var queryWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses whitespace and caps query text recorded
// on database spans.
func formatDBQueryForTrace(query string) string {
	normalized := queryWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(normalized) > maxTracedQueryLength {
		return normalized[:maxTracedQueryLength] + "..."
	}

	return normalized
}
