package model

import (
	"fmt"
	"time"

	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// ComplexityPolicy is the password complexity policy row of one organization.
type ComplexityPolicy struct {
	OrgID        string    `gorm:"column:org_id;primaryKey;type:uuid"`
	MinLength    int       `gorm:"column:min_length"`
	HasUppercase bool      `gorm:"column:has_uppercase"`
	HasLowercase bool      `gorm:"column:has_lowercase"`
	HasNumber    bool      `gorm:"column:has_number"`
	HasSymbol    bool      `gorm:"column:has_symbol"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (ComplexityPolicy) TableName() string {
	return "password_complexity_policies"
}

func NewComplexityPolicy(orgID string, c policy.Complexity) *ComplexityPolicy {
	return &ComplexityPolicy{
		OrgID:        orgID,
		MinLength:    c.MinLength,
		HasUppercase: c.HasUppercase,
		HasLowercase: c.HasLowercase,
		HasNumber:    c.HasNumber,
		HasSymbol:    c.HasSymbol,
	}
}

func (p *ComplexityPolicy) Columns() map[string]interface{} {
	return map[string]interface{}{
		"min_length":    p.MinLength,
		"has_uppercase": p.HasUppercase,
		"has_lowercase": p.HasLowercase,
		"has_number":    p.HasNumber,
		"has_symbol":    p.HasSymbol,
	}
}

func (p *ComplexityPolicy) Policy() *policy.Policy {
	return &policy.Policy{
		OrgID: p.OrgID,
		Kind:  policy.KindComplexity,
		Complexity: &policy.Complexity{
			MinLength:    p.MinLength,
			HasUppercase: p.HasUppercase,
			HasLowercase: p.HasLowercase,
			HasNumber:    p.HasNumber,
			HasSymbol:    p.HasSymbol,
		},
		CreatedAt: timePtr(p.CreatedAt),
		UpdatedAt: timePtr(p.UpdatedAt),
	}
}

// AgePolicy is the password age policy row of one organization.
type AgePolicy struct {
	OrgID          string    `gorm:"column:org_id;primaryKey;type:uuid"`
	MaxAgeDays     int       `gorm:"column:max_age_days"`
	ExpireWarnDays int       `gorm:"column:expire_warn_days"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (AgePolicy) TableName() string {
	return "password_age_policies"
}

func NewAgePolicy(orgID string, a policy.Age) *AgePolicy {
	return &AgePolicy{OrgID: orgID, MaxAgeDays: a.MaxAgeDays, ExpireWarnDays: a.ExpireWarnDays}
}

func (p *AgePolicy) Columns() map[string]interface{} {
	return map[string]interface{}{
		"max_age_days":     p.MaxAgeDays,
		"expire_warn_days": p.ExpireWarnDays,
	}
}

func (p *AgePolicy) Policy() *policy.Policy {
	return &policy.Policy{
		OrgID:     p.OrgID,
		Kind:      policy.KindAge,
		Age:       &policy.Age{MaxAgeDays: p.MaxAgeDays, ExpireWarnDays: p.ExpireWarnDays},
		CreatedAt: timePtr(p.CreatedAt),
		UpdatedAt: timePtr(p.UpdatedAt),
	}
}

// LockoutPolicy is the password lockout policy row of one organization.
type LockoutPolicy struct {
	OrgID               string    `gorm:"column:org_id;primaryKey;type:uuid"`
	MaxAttempts         int       `gorm:"column:max_attempts"`
	ShowLockoutFailures bool      `gorm:"column:show_lockout_failures"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (LockoutPolicy) TableName() string {
	return "password_lockout_policies"
}

func NewLockoutPolicy(orgID string, l policy.Lockout) *LockoutPolicy {
	return &LockoutPolicy{OrgID: orgID, MaxAttempts: l.MaxAttempts, ShowLockoutFailures: l.ShowLockoutFailures}
}

func (p *LockoutPolicy) Columns() map[string]interface{} {
	return map[string]interface{}{
		"max_attempts":          p.MaxAttempts,
		"show_lockout_failures": p.ShowLockoutFailures,
	}
}

func (p *LockoutPolicy) Policy() *policy.Policy {
	return &policy.Policy{
		OrgID:     p.OrgID,
		Kind:      policy.KindLockout,
		Lockout:   &policy.Lockout{MaxAttempts: p.MaxAttempts, ShowLockoutFailures: p.ShowLockoutFailures},
		CreatedAt: timePtr(p.CreatedAt),
		UpdatedAt: timePtr(p.UpdatedAt),
	}
}

// PolicyRow is implemented by the three policy rows.
type PolicyRow interface {
	Policy() *policy.Policy
	// Columns returns the policy settings keyed by column, for updates.
	Columns() map[string]interface{}
}

// EmptyPolicyRow returns a zero row of the table holding policies of kind.
func EmptyPolicyRow(kind policy.Kind) (PolicyRow, error) {
	switch kind {
	case policy.KindComplexity:
		return &ComplexityPolicy{}, nil
	case policy.KindAge:
		return &AgePolicy{}, nil
	case policy.KindLockout:
		return &LockoutPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown policy kind %d", kind)
}

// NewPolicyRow returns the row for a policy envelope, or nil if its section is missing.
func NewPolicyRow(p *policy.Policy) PolicyRow {
	switch {
	case p.Kind == policy.KindComplexity && p.Complexity != nil:
		return NewComplexityPolicy(p.OrgID, *p.Complexity)
	case p.Kind == policy.KindAge && p.Age != nil:
		return NewAgePolicy(p.OrgID, *p.Age)
	case p.Kind == policy.KindLockout && p.Lockout != nil:
		return NewLockoutPolicy(p.OrgID, *p.Lockout)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
