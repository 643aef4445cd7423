package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// MaxIDLength bounds session, node and edge identifiers.
const MaxIDLength = 128

var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID validates an identifier taken from a URL path or the command
// line. what names the identifier in the error message ("session ID",
// "node ID", ...).
func ValidateID(what, id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "%s cannot be empty", what)
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "%s too long (max %d characters)", what, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid %s: %q", what, id)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed. Matching is case
// insensitive; the normalized name is returned.
func ValidateFormat(format string, allowed ...string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if !slices.Contains(allowed, f) {
		return "", New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return f, nil
}

// ValidateKey validates an object key supplied by a client. Keys may hold
// any printable text but no control characters.
func ValidateKey(key string) error {
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "key contains control characters")
		}
	}
	return nil
}
