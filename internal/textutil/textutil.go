// Package textutil holds small rune-safe string helpers shared by the
// providers, the translator and the sentiment classifier.
package textutil

import "strings"

// Truncate returns at most maxRunes runes of s. It never splits a
// multi-byte character, which matters for Arabic and other non-Latin text.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// Ellipsize is Truncate with a trailing "..." when s was cut.
func Ellipsize(s string, maxRunes int) string {
	t := Truncate(s, maxRunes)
	if len(t) < len(s) {
		return t + "..."
	}
	return t
}

// ContainsFold reports whether substr occurs in s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
