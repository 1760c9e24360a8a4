package client

import (
	"context"
	"net/http"

	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/endpoints"
)

func policyPath(orgID string, kind policy.Kind) string {
	return path("orgs", orgID, "policies", kind.String())
}

func (c *Client) submit(ctx context.Context, method, orgID string, kind policy.Kind, section interface{}) (*policy.Policy, error) {
	var resp policy.Policy
	if err := c.do(ctx, method, policyPath(orgID, kind), section, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPolicy returns the effective policy. Default is set when the
// organization uses the instance default.
func (c *Client) GetPolicy(ctx context.Context, orgID string, kind policy.Kind) (*policy.Policy, error) {
	var resp policy.Policy
	if err := c.do(ctx, http.MethodGet, policyPath(orgID, kind), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPolicies returns the effective policy of every kind.
func (c *Client) GetPolicies(ctx context.Context, orgID string) ([]*policy.Policy, error) {
	var resp endpoints.PolicyGridResponse
	if err := c.do(ctx, http.MethodGet, path("orgs", orgID, "policies"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Policies, nil
}

// DeletePolicy removes the organization's own policy of kind.
func (c *Client) DeletePolicy(ctx context.Context, orgID string, kind policy.Kind) error {
	return c.do(ctx, http.MethodDelete, policyPath(orgID, kind), nil, nil)
}

// CheckPassword checks password against the effective complexity policy.
func (c *Client) CheckPassword(ctx context.Context, orgID, password string) (*endpoints.PasswordCheckResponse, error) {
	var resp endpoints.PasswordCheckResponse
	err := c.do(ctx, http.MethodPost, path("orgs", orgID, "policies", "complexity", "_check"),
		endpoints.PasswordCheckRequest{Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreatePasswordComplexityPolicy(ctx context.Context, orgID string, s policy.Complexity) (*policy.Policy, error) {
	return c.submit(ctx, http.MethodPost, orgID, policy.KindComplexity, s)
}

func (c *Client) UpdatePasswordComplexityPolicy(ctx context.Context, orgID string, s policy.Complexity) (*policy.Policy, error) {
	return c.submit(ctx, http.MethodPut, orgID, policy.KindComplexity, s)
}

func (c *Client) CreatePasswordAgePolicy(ctx context.Context, orgID string, s policy.Age) (*policy.Policy, error) {
	return c.submit(ctx, http.MethodPost, orgID, policy.KindAge, s)
}

func (c *Client) UpdatePasswordAgePolicy(ctx context.Context, orgID string, s policy.Age) (*policy.Policy, error) {
	return c.submit(ctx, http.MethodPut, orgID, policy.KindAge, s)
}

func (c *Client) CreatePasswordLockoutPolicy(ctx context.Context, orgID string, s policy.Lockout) (*policy.Policy, error) {
	return c.submit(ctx, http.MethodPost, orgID, policy.KindLockout, s)
}

func (c *Client) UpdatePasswordLockoutPolicy(ctx context.Context, orgID string, s policy.Lockout) (*policy.Policy, error) {
	return c.submit(ctx, http.MethodPut, orgID, policy.KindLockout, s)
}
