package views

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)

// ValidPhone reports whether s looks like a bookable phone number: an
// optional leading +, then digits, dashes or parens, at least ten characters
// once whitespace is stripped.
func ValidPhone(s string) bool {
	stripped := strings.Join(strings.Fields(s), "")
	return phonePattern.MatchString(stripped)
}
