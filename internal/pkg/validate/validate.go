package validate

import (
	"strings"
	"unicode/utf8"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// WithinRunes reports whether value has at most max characters.
func WithinRunes(value string, max int) bool {
	return utf8.RuneCountInString(value) <= max
}
