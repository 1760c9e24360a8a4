// Package origin validates the browser origins and redirect targets an
// organization may register, such as CORS allowed origins and IDP issuers.
package origin

import (
	"fmt"
	"regexp"
	"strings"
)

// originRegex accepts absolute http(s) URLs whose host contains at least one dot,
// optionally followed by a path.
var originRegex = regexp.MustCompile(`(?m)^((https?://).*?([\w\d-]*\.[\w\d]+))($|/.*$)`)

// IsValid reports whether s is a well-formed absolute HTTP(S) URL.
func IsValid(s string) bool {
	return originRegex.MatchString(s)
}

// Normalize trims surrounding whitespace and any trailing slash so that
// "https://example.com/" and "https://example.com" are stored once.
func Normalize(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// InvalidError is returned for an origin that does not pass IsValid.
type InvalidError struct {
	Origin string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid origin %q: must be an absolute http or https URL", e.Origin)
}

// Validate returns an *InvalidError unless s is a single-line origin that
// passes IsValid. IsValid matches line by line, so values that are stored
// must not contain line breaks.
func Validate(s string) error {
	if strings.ContainsAny(s, "\r\n") || !IsValid(s) {
		return &InvalidError{Origin: s}
	}
	return nil
}

// ValidateAll returns an *InvalidError for the first invalid origin, or nil.
func ValidateAll(origins []string) error {
	for _, o := range origins {
		if err := Validate(o); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether origins holds candidate after normalization.
func Contains(origins []string, candidate string) bool {
	candidate = Normalize(candidate)
	for _, o := range origins {
		if Normalize(o) == candidate {
			return true
		}
	}
	return false
}
