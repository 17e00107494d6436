// Package tokenize splits a line of text into normalized index words.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinLength is the shortest token, in runes, kept by Tokenize.
const MinLength = 2

var lower = cases.Lower(language.Und)

// Tokenize lower-cases line, blanks out every rune that is not a letter,
// digit, underscore or whitespace, and returns the remaining runs of word
// runes in order. Tokens shorter than MinLength are dropped.
func Tokenize(line string) []string {
	norm := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, Normalize(line))

	var tokens []string
	for _, run := range strings.FieldsFunc(norm, func(r rune) bool { return !isWordRune(r) }) {
		if len([]rune(run)) < MinLength {
			continue
		}
		tokens = append(tokens, run)
	}
	return tokens
}

// Normalize applies the case folding used for stored words.
func Normalize(s string) string {
	return lower.String(s)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
