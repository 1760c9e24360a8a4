package policy

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxMinLength bounds MinLength so a typo cannot lock every user out.
const MaxMinLength = 72

// ValidationError reports an invalid policy field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (c Complexity) Validate() error {
	if c.MinLength < 1 {
		return &ValidationError{Field: "min_length", Reason: "must be at least 1"}
	}
	if c.MinLength > MaxMinLength {
		return &ValidationError{Field: "min_length", Reason: fmt.Sprintf("must not exceed %d", MaxMinLength)}
	}
	return nil
}

func (a Age) Validate() error {
	if a.MaxAgeDays < 0 {
		return &ValidationError{Field: "max_age_days", Reason: "must not be negative"}
	}
	if a.ExpireWarnDays < 0 {
		return &ValidationError{Field: "expire_warn_days", Reason: "must not be negative"}
	}
	if a.MaxAgeDays > 0 && a.ExpireWarnDays > a.MaxAgeDays {
		return &ValidationError{Field: "expire_warn_days", Reason: "must not exceed max_age_days"}
	}
	return nil
}

func (l Lockout) Validate() error {
	if l.MaxAttempts < 0 {
		return &ValidationError{Field: "max_attempts", Reason: "must not be negative"}
	}
	return nil
}

// Violation names a complexity rule a password breaks.
type Violation string

const (
	ViolationTooShort    Violation = "too_short"
	ViolationNoUppercase Violation = "missing_uppercase"
	ViolationNoLowercase Violation = "missing_lowercase"
	ViolationNoNumber    Violation = "missing_number"
	ViolationNoSymbol    Violation = "missing_symbol"
)

// CheckPassword returns every rule of c that password violates. Length is
// counted in runes; any rune that is neither a letter nor a digit counts as a symbol.
func (c Complexity) CheckPassword(password string) []Violation {
	var upper, lower, number, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			number = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}

	violations := []Violation{}
	if utf8.RuneCountInString(password) < c.MinLength {
		violations = append(violations, ViolationTooShort)
	}
	if c.HasUppercase && !upper {
		violations = append(violations, ViolationNoUppercase)
	}
	if c.HasLowercase && !lower {
		violations = append(violations, ViolationNoLowercase)
	}
	if c.HasNumber && !number {
		violations = append(violations, ViolationNoNumber)
	}
	if c.HasSymbol && !symbol {
		violations = append(violations, ViolationNoSymbol)
	}
	return violations
}

// IsLocked reports whether failedAttempts consecutive failures lock the user.
func (l Lockout) IsLocked(failedAttempts int) bool {
	return l.MaxAttempts > 0 && failedAttempts >= l.MaxAttempts
}

// ExpiresAt returns when a password changed at changedAt expires, and false
// if the policy never expires passwords.
func (a Age) ExpiresAt(changedAt time.Time) (time.Time, bool) {
	if a.MaxAgeDays == 0 {
		return time.Time{}, false
	}
	return changedAt.AddDate(0, 0, a.MaxAgeDays), true
}

// ShouldWarn reports whether now falls inside the warning window before expiry.
func (a Age) ShouldWarn(changedAt, now time.Time) bool {
	expiry, ok := a.ExpiresAt(changedAt)
	if !ok || a.ExpireWarnDays == 0 {
		return false
	}
	return !now.Before(expiry.AddDate(0, 0, -a.ExpireWarnDays)) && now.Before(expiry)
}

// IsExpired reports whether a password changed at changedAt is expired at now.
func (a Age) IsExpired(changedAt, now time.Time) bool {
	expiry, ok := a.ExpiresAt(changedAt)
	return ok && !now.Before(expiry)
}
