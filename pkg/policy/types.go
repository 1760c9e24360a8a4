package policy

import (
	"fmt"
	"time"
)

// Complexity governs which passwords an organization accepts.
type Complexity struct {
	MinLength    int  `json:"min_length" yaml:"min_length"`
	HasUppercase bool `json:"has_uppercase" yaml:"has_uppercase"`
	HasLowercase bool `json:"has_lowercase" yaml:"has_lowercase"`
	HasNumber    bool `json:"has_number" yaml:"has_number"`
	HasSymbol    bool `json:"has_symbol" yaml:"has_symbol"`
}

// Age governs how long a password stays valid. MaxAgeDays of 0 means passwords never expire.
type Age struct {
	MaxAgeDays     int `json:"max_age_days" yaml:"max_age_days"`
	ExpireWarnDays int `json:"expire_warn_days" yaml:"expire_warn_days"`
}

// Lockout governs how many failed attempts lock a user. MaxAttempts of 0 disables locking.
type Lockout struct {
	MaxAttempts         int  `json:"max_attempts" yaml:"max_attempts"`
	ShowLockoutFailures bool `json:"show_lockout_failures" yaml:"show_lockout_failures"`
}

// Policy is the envelope returned for an organization. Exactly one of the
// sections matching Kind is set. Default is true when the organization has no
// policy of its own and the instance default is returned instead.
type Policy struct {
	OrgID      string      `json:"org_id"`
	Kind       Kind        `json:"kind"`
	Default    bool        `json:"default"`
	Complexity *Complexity `json:"complexity,omitempty"`
	Age        *Age        `json:"age,omitempty"`
	Lockout    *Lockout    `json:"lockout,omitempty"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
	UpdatedAt  *time.Time  `json:"updated_at,omitempty"`
}

// Defaults holds the instance-wide policies applied to organizations without their own.
type Defaults struct {
	Complexity Complexity `json:"complexity" yaml:"complexity"`
	Age        Age        `json:"age" yaml:"age"`
	Lockout    Lockout    `json:"lockout" yaml:"lockout"`
}

// DefaultPolicies returns the built-in instance defaults.
func DefaultPolicies() Defaults {
	return Defaults{
		Complexity: Complexity{
			MinLength:    8,
			HasUppercase: true,
			HasLowercase: true,
			HasNumber:    true,
			HasSymbol:    false,
		},
		Age: Age{
			MaxAgeDays:     0,
			ExpireWarnDays: 0,
		},
		Lockout: Lockout{
			MaxAttempts:         0,
			ShowLockoutFailures: true,
		},
	}
}

// For returns the default policy of the given kind, flagged as a default for orgID.
func (d Defaults) For(orgID string, kind Kind) *Policy {
	p := &Policy{OrgID: orgID, Kind: kind, Default: true}
	switch kind {
	case KindComplexity:
		c := d.Complexity
		p.Complexity = &c
	case KindAge:
		a := d.Age
		p.Age = &a
	case KindLockout:
		l := d.Lockout
		p.Lockout = &l
	}
	return p
}

// Validate checks all three defaults.
func (d Defaults) Validate() error {
	if err := d.Complexity.Validate(); err != nil {
		return fmt.Errorf("default complexity policy: %w", err)
	}
	if err := d.Age.Validate(); err != nil {
		return fmt.Errorf("default age policy: %w", err)
	}
	if err := d.Lockout.Validate(); err != nil {
		return fmt.Errorf("default lockout policy: %w", err)
	}
	return nil
}

// Validate checks that the section matching Kind is present and valid.
func (p *Policy) Validate() error {
	switch p.Kind {
	case KindComplexity:
		if p.Complexity == nil {
			return &ValidationError{Field: "complexity", Reason: "is required"}
		}
		return p.Complexity.Validate()
	case KindAge:
		if p.Age == nil {
			return &ValidationError{Field: "age", Reason: "is required"}
		}
		return p.Age.Validate()
	case KindLockout:
		if p.Lockout == nil {
			return &ValidationError{Field: "lockout", Reason: "is required"}
		}
		return p.Lockout.Validate()
	default:
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown policy kind %q", p.Kind.String())}
	}
}
