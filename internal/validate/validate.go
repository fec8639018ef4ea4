// Package validate holds the pure credential checks run before any
// persistence attempt.
package validate

import (
	"net/mail"
	"strings"
	"unicode"
)

const minPasswordLength = 8

// Password reports whether the candidate satisfies the strength policy:
// at least 8 characters with at least one letter and one digit. No I/O,
// no side effects.
func Password(candidate string) bool {
	if len(candidate) < minPasswordLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range candidate {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// Email reports whether the candidate is a syntactically valid bare
// address. Deliverability is not checked.
func Email(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return false
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Bob <bob@acme.io>".
	return addr.Address == trimmed
}
