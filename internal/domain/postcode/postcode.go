// Package postcode handles Dutch postal codes (four digits, two letters).
package postcode

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pattern       = regexp.MustCompile(`^\d{4}[A-Z]{2}$`)
	prefixPattern = regexp.MustCompile(`^\d{1,4}$|^\d{4}[A-Z]{1,2}$`)
)

// Normalize strips all whitespace and upper-cases the input.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// Valid reports whether a normalized code has the 1234AB shape.
func Valid(code string) bool {
	return pattern.MatchString(code)
}

// ValidPrefix reports whether a normalized string can start a postal code.
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// Parse normalizes s and reports whether the result is a full postal code.
func Parse(s string) (string, bool) {
	code := Normalize(s)
	return code, Valid(code)
}

// HasPrefix reports whether code starts with prefix after normalizing both.
// An empty prefix matches everything.
func HasPrefix(code, prefix string) bool {
	return strings.HasPrefix(Normalize(code), Normalize(prefix))
}
