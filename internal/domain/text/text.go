// Package text provides the word tokenization used by lexical scoring.
package text

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases s, replaces every rune that is not a Unicode letter
// or digit with a space, and splits on whitespace runs. Empty tokens are
// dropped; empty input yields a nil slice.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Fields(mapped)
}
