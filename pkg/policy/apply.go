package policy

import (
	"context"
	"fmt"
	"sort"
)

// Manager reads the effective policy of an organization and submits forms.
type Manager interface {
	Service
	GetPolicy(ctx context.Context, orgID string, kind Kind) (*Policy, error)
}

// Result is the outcome of applying one statement.
type Result struct {
	Org     string
	Kind    Kind
	Mode    Mode
	Changed bool
	Policy  *Policy
}

// SameSettings reports whether p and o carry equal sections of the same kind.
func (p *Policy) SameSettings(o *Policy) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case KindComplexity:
		return p.Complexity != nil && o.Complexity != nil && *p.Complexity == *o.Complexity
	case KindAge:
		return p.Age != nil && o.Age != nil && *p.Age == *o.Age
	case KindLockout:
		return p.Lockout != nil && o.Lockout != nil && *p.Lockout == *o.Lockout
	}
	return false
}

// Apply brings every organization in d to the policies it lists, in org name
// order. A kind the organization still takes from the instance default is
// created, otherwise it is modified. Statements matching the organization's
// own policy are skipped.
func (d Document) Apply(ctx context.Context, m Manager) ([]Result, error) {
	orgs := make([]string, 0, len(d))
	for org := range d {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)

	var results []Result
	for _, org := range orgs {
		for _, stmt := range d[org] {
			current, err := m.GetPolicy(ctx, org, stmt.Kind)
			if err != nil {
				return results, fmt.Errorf("org %s: %s policy: %w", org, stmt.Kind, err)
			}
			if !current.Default && current.SameSettings(stmt) {
				results = append(results, Result{Org: org, Kind: stmt.Kind, Mode: ModeModify, Policy: current})
				continue
			}

			desired := *stmt
			desired.OrgID = org
			desired.Default = current.Default
			f, err := NewForm(&desired)
			if err != nil {
				return results, fmt.Errorf("org %s: %s policy: %w", org, stmt.Kind, err)
			}
			mode := f.Mode
			p, err := f.Submit(ctx, m)
			if err != nil {
				return results, fmt.Errorf("org %s: %s policy: %w", org, stmt.Kind, err)
			}
			results = append(results, Result{Org: org, Kind: stmt.Kind, Mode: mode, Changed: true, Policy: p})
		}
	}
	return results, nil
}
