package policy

import (
	"context"
	"fmt"
)

// Service is the set of operations a Form submits to. Each policy kind has a
// create and a modify operation.
type Service interface {
	CreatePasswordComplexityPolicy(ctx context.Context, orgID string, c Complexity) (*Policy, error)
	UpdatePasswordComplexityPolicy(ctx context.Context, orgID string, c Complexity) (*Policy, error)
	CreatePasswordAgePolicy(ctx context.Context, orgID string, a Age) (*Policy, error)
	UpdatePasswordAgePolicy(ctx context.Context, orgID string, a Age) (*Policy, error)
	CreatePasswordLockoutPolicy(ctx context.Context, orgID string, l Lockout) (*Policy, error)
	UpdatePasswordLockoutPolicy(ctx context.Context, orgID string, l Lockout) (*Policy, error)
}

// Form holds editable state for one policy of an organization. A form built
// from a default policy submits in create mode, otherwise in modify mode.
type Form struct {
	OrgID string
	Kind  Kind
	Mode  Mode

	complexity Complexity
	age        Age
	lockout    Lockout
}

// NewForm populates a form from a fetched policy.
func NewForm(p *Policy) (*Form, error) {
	f := &Form{OrgID: p.OrgID, Kind: p.Kind, Mode: ModeModify}
	if p.Default {
		f.Mode = ModeCreate
	}

	switch p.Kind {
	case KindComplexity:
		if p.Complexity == nil {
			return nil, &ValidationError{Field: "complexity", Reason: "is required"}
		}
		f.complexity = *p.Complexity
	case KindAge:
		if p.Age == nil {
			return nil, &ValidationError{Field: "age", Reason: "is required"}
		}
		f.age = *p.Age
	case KindLockout:
		if p.Lockout == nil {
			return nil, &ValidationError{Field: "lockout", Reason: "is required"}
		}
		f.lockout = *p.Lockout
	default:
		return nil, fmt.Errorf("unknown policy kind %d", p.Kind)
	}
	return f, nil
}

func (f *Form) counter(field string) (*int, error) {
	switch {
	case f.Kind == KindComplexity && field == "min_length":
		return &f.complexity.MinLength, nil
	case f.Kind == KindAge && field == "max_age_days":
		return &f.age.MaxAgeDays, nil
	case f.Kind == KindAge && field == "expire_warn_days":
		return &f.age.ExpireWarnDays, nil
	case f.Kind == KindLockout && field == "max_attempts":
		return &f.lockout.MaxAttempts, nil
	}
	return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("is not a counter of the %s policy", f.Kind)}
}

func (f *Form) flag(field string) (*bool, error) {
	switch {
	case f.Kind == KindComplexity && field == "has_uppercase":
		return &f.complexity.HasUppercase, nil
	case f.Kind == KindComplexity && field == "has_lowercase":
		return &f.complexity.HasLowercase, nil
	case f.Kind == KindComplexity && field == "has_number":
		return &f.complexity.HasNumber, nil
	case f.Kind == KindComplexity && field == "has_symbol":
		return &f.complexity.HasSymbol, nil
	case f.Kind == KindLockout && field == "show_lockout_failures":
		return &f.lockout.ShowLockoutFailures, nil
	}
	return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("is not a flag of the %s policy", f.Kind)}
}

// Increment adds one to a counter field.
func (f *Form) Increment(field string) error {
	return f.Adjust(field, 1)
}

// Decrement subtracts one from a counter field, stopping at zero.
func (f *Form) Decrement(field string) error {
	return f.Adjust(field, -1)
}

// Adjust adds delta to a counter field and clamps the result at zero.
func (f *Form) Adjust(field string, delta int) error {
	v, err := f.counter(field)
	if err != nil {
		return err
	}
	*v += delta
	if *v < 0 {
		*v = 0
	}
	return nil
}

// SetCounter sets a counter field, clamping negative values at zero.
func (f *Form) SetCounter(field string, value int) error {
	v, err := f.counter(field)
	if err != nil {
		return err
	}
	*v = max(value, 0)
	return nil
}

// SetFlag sets a boolean field.
func (f *Form) SetFlag(field string, value bool) error {
	v, err := f.flag(field)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

// Set assigns value to field, dispatching to SetCounter or SetFlag by type.
func (f *Form) Set(field string, value interface{}) error {
	switch v := value.(type) {
	case int:
		return f.SetCounter(field, v)
	case bool:
		return f.SetFlag(field, v)
	default:
		return &ValidationError{Field: field, Reason: fmt.Sprintf("cannot be set to %T", value)}
	}
}

// Policy returns the current form state as a policy envelope.
func (f *Form) Policy() *Policy {
	p := &Policy{OrgID: f.OrgID, Kind: f.Kind, Default: f.Mode == ModeCreate}
	switch f.Kind {
	case KindComplexity:
		c := f.complexity
		p.Complexity = &c
	case KindAge:
		a := f.age
		p.Age = &a
	case KindLockout:
		l := f.lockout
		p.Lockout = &l
	}
	return p
}

// Submit validates the form and sends it to the create or modify operation
// matching its kind and mode. On success the form switches to modify mode.
func (f *Form) Submit(ctx context.Context, svc Service) (*Policy, error) {
	if err := f.Policy().Validate(); err != nil {
		return nil, err
	}

	var (
		p   *Policy
		err error
	)
	switch {
	case f.Kind == KindComplexity && f.Mode == ModeCreate:
		p, err = svc.CreatePasswordComplexityPolicy(ctx, f.OrgID, f.complexity)
	case f.Kind == KindComplexity:
		p, err = svc.UpdatePasswordComplexityPolicy(ctx, f.OrgID, f.complexity)
	case f.Kind == KindAge && f.Mode == ModeCreate:
		p, err = svc.CreatePasswordAgePolicy(ctx, f.OrgID, f.age)
	case f.Kind == KindAge:
		p, err = svc.UpdatePasswordAgePolicy(ctx, f.OrgID, f.age)
	case f.Kind == KindLockout && f.Mode == ModeCreate:
		p, err = svc.CreatePasswordLockoutPolicy(ctx, f.OrgID, f.lockout)
	case f.Kind == KindLockout:
		p, err = svc.UpdatePasswordLockoutPolicy(ctx, f.OrgID, f.lockout)
	default:
		return nil, fmt.Errorf("unknown policy kind %d", f.Kind)
	}
	if err != nil {
		return nil, err
	}

	f.Mode = ModeModify
	return p, nil
}
