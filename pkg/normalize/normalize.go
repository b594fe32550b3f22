// Package normalize canonicalizes product and header text for comparison.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Hangul syllable block retained by String.
const (
	hangulFirst = '가'
	hangulLast  = '힣'
)

// String trims, composes, lowercases and strips text down to ASCII letters,
// digits and precomposed Hangul syllables. It is idempotent.
func String(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether a and b normalize to the same string.
func Equal(a, b string) bool {
	return String(a) == String(b)
}

func keep(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= hangulFirst && r <= hangulLast:
		return true
	}
	return false
}
