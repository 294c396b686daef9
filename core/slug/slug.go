// Package slug turns free text into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases s, drops every rune that is not a letter, number,
// underscore, space or hyphen, and joins the remaining words with single
// hyphens. The result has no leading or trailing hyphen and may be empty.
func Make(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, ch := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(ch) || unicode.IsNumber(ch):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(ch)
		case ch == '_' || ch == '-' || unicode.IsSpace(ch):
			pendingSep = true
		}
		// Anything else is dropped without acting as a separator.
	}
	return b.String()
}

// ID joins a calendar date and a slug into a record identifier.
func ID(date, slug string) string {
	return date + "-" + slug
}
