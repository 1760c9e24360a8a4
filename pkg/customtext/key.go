package customtext

import (
	"fmt"
	"strings"
)

// Key names a message template.
type Key string

const (
	KeyInitCode                 Key = "InitCode"
	KeyPasswordReset            Key = "PasswordReset"
	KeyVerifyEmail              Key = "VerifyEmail"
	KeyVerifyPhone              Key = "VerifyPhone"
	KeyDomainClaimed            Key = "DomainClaimed"
	KeyPasswordlessRegistration Key = "PasswordlessRegistration"
)

// Keys lists every template key in display order.
var Keys = []Key{
	KeyInitCode,
	KeyPasswordReset,
	KeyVerifyEmail,
	KeyVerifyPhone,
	KeyDomainClaimed,
	KeyPasswordlessRegistration,
}

// ParseKey matches s against the known keys, ignoring case.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown message template %q", s)
}
