// Package slug turns source filenames into output filename stems.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fallback is used when nothing of the stem survives.
const Fallback = "post"

// Make lower-cases stem, turns each whitespace rune into a hyphen and
// drops everything that is not a letter, a digit, '-' or '_'.
//
// Make is deterministic but not injective: "Hello World" and
// "hello world" produce the same slug.
func Make(stem string) string {
	folded := cases.Lower(language.Und).String(stem)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('-')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}
