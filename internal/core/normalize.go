package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Standardize returns the canonical key for a brand or company name.
//
// The name is NFKC-normalized, trimmed and uppercased, then every trailing
// parenthetical is removed:
//
//	Standardize("Brand (Owner Co)")  // "BRAND"
//	Standardize(" a (b) (c) ")       // "A"
//	Standardize("(Holding)")         // "(HOLDING)"
//
// A name that is nothing but a parenthetical is kept whole. Standardize is
// idempotent.
func Standardize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(norm.NFKC.String(s)))

	for {
		stripped := stripParenSuffix(s)
		if stripped == s || stripped == "" {
			return s
		}
		s = stripped
	}
}

// stripParenSuffix removes one trailing "(...)" group and the whitespace
// before it. Returns s unchanged when it does not end with a closed group.
func stripParenSuffix(s string) string {
	if !strings.HasSuffix(s, ")") {
		return s
	}

	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[:i])
			}
		}
	}

	return s
}

// upperText prepares free text for case-insensitive substring search.
func upperText(s string) string {
	return strings.ToUpper(norm.NFKC.String(s))
}
