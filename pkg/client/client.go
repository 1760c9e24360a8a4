package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/endpoints"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

var (
	_ policy.Manager = (*Client)(nil)
	_ OrgService     = (*Client)(nil)
)

// OrgService is the set of organization operations the admin console uses:
// reading the policy grid, deleting a policy to fall back to the default, and
// the create and modify operations a policy form submits to.
type OrgService interface {
	policy.Manager
	GetPolicies(ctx context.Context, orgID string) ([]*policy.Policy, error)
	DeletePolicy(ctx context.Context, orgID string, kind policy.Kind) error
	CheckPassword(ctx context.Context, orgID, password string) (*endpoints.PasswordCheckResponse, error)
}

// APIError is a non-2xx response of the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Is lets callers test responses against the store sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case store.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case store.ErrAlreadyExists:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Client calls the administration API with a bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpClient,
	}
}

// path joins escaped segments.
func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, method, p string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Health checks server and database availability.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// CheckOrigin asks the server whether o is a valid origin.
func (c *Client) CheckOrigin(ctx context.Context, o string) (bool, error) {
	var resp endpoints.OriginCheckResponse
	err := c.do(ctx, http.MethodGet, "/origins/_check?origin="+url.QueryEscape(o), nil, &resp)
	return resp.Valid, err
}

func (c *Client) ListOrgs(ctx context.Context) ([]model.Org, error) {
	var resp endpoints.OrgsResponse
	if err := c.do(ctx, http.MethodGet, "/orgs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orgs, nil
}

func (c *Client) GetOrg(ctx context.Context, org string) (*model.Org, error) {
	var resp model.Org
	if err := c.do(ctx, http.MethodGet, path("orgs", org), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateOrg(ctx context.Context, req endpoints.OrgRequest) (*model.Org, error) {
	var resp model.Org
	if err := c.do(ctx, http.MethodPost, "/orgs", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteOrg(ctx context.Context, org string) error {
	return c.do(ctx, http.MethodDelete, path("orgs", org), nil, nil)
}
