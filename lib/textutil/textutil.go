package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.Trim(s, " \n\t")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return s
}

// ContainsAny reports whether the normalized text contains any of the
// given patterns. Patterns are matched case-insensitively; Hebrew
// patterns have no case so they pass through unchanged.
func ContainsAny(text string, patterns []string) bool {
	text = NormalizeText(text)
	for _, p := range patterns {
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
