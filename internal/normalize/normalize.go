// Package normalize produces the canonical comparison form of author
// display names.
//
// Two raw names compare equal exactly when their keys are equal: "O'Brien",
// "obrien" and "Ó'Brien " all map to "obrien". The key is built by
// decomposing Unicode combining sequences and dropping the combining marks,
// removing everything except word characters, whitespace and hyphens,
// collapsing hyphen/whitespace runs to a single space, lower-casing and
// trimming.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes combining sequences (NFKD) and removes the
// combining marks, so "é" and "e" become identical.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Key maps a raw display name to its canonical comparison form.
// It is pure, total and idempotent: Key(Key(x)) == Key(x) for all x,
// including the empty string.
func Key(name string) string {
	stripped, _, err := transform.String(stripMarks, name)
	if err != nil {
		// transform.String only fails on malformed UTF-8; fall back to
		// the raw bytes rather than dropping the name.
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSep := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingSep && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-':
			// Runs of hyphens and whitespace collapse to one space;
			// leading and trailing runs vanish.
			pendingSep = true
		default:
			// Punctuation and symbols are removed without acting as a
			// separator: "O'Brien" joins to "obrien".
		}
	}
	return b.String()
}

// TitleCase renders a normalized key for display by capitalizing each
// space-delimited token: "john r smith" becomes "John R Smith".
func TitleCase(key string) string {
	fields := strings.Fields(key)
	for i, f := range fields {
		r := []rune(f)
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}
