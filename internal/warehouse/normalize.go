// Package warehouse canonicalizes free-text warehouse names so that
// matching and subscription filtering tolerate case, spacing and the common
// misspellings seen in real listings.
package warehouse

import (
	"strings"
	"unicode"
)

// replacements is applied in order; a later pair may re-match the output of
// an earlier one, which is intentional and pinned by tests. The ё fold runs
// first so the substring pairs see a single spelling.
var replacements = [][2]string{
	{"ё", "е"},
	{"коледино", "каледино"},
	{"электросталь", "електросталь"},
	{"подольск", "падольск"},
	{"щелково", "щолково"},
	{"чехов", "чихов"},
}

// Normalize returns the canonical form of a warehouse name. Two names refer
// to the same warehouse iff their normalized forms are equal. The function
// is total and idempotent; empty input normalizes to "".
func Normalize(s string) string {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.Join(strings.Fields(n), " ")

	for _, r := range replacements {
		n = strings.ReplaceAll(n, r[0], r[1])
	}

	var b strings.Builder
	b.Grow(len(n))
	for _, r := range n {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Same reports whether two free-text names refer to the same warehouse.
func Same(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
