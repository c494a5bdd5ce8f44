package slug

import (
	"regexp"
	"strings"
)

var separators = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns a meeting title into a lowercase file-name fragment. Titles
// with no usable characters become "meeting".
func Make(input string) string {
	s := separators.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	if s == "" {
		return "meeting"
	}
	return s
}
