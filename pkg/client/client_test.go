package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "test-token", srv.Client())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetPolicy(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/orgs/acme%20corp/policies/lockout", r.URL.EscapedPath())
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, policy.DefaultPolicies().For("acme corp", policy.KindLockout))
	})

	p, err := c.GetPolicy(context.Background(), "acme corp", policy.KindLockout)
	require.NoError(t, err)
	assert.True(t, p.Default)
	assert.Equal(t, policy.KindLockout, p.Kind)
	require.NotNil(t, p.Lockout)
}

func TestSubmitMethods(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *Client) (*policy.Policy, error)
		method string
		path   string
	}{
		{"create complexity", func(c *Client) (*policy.Policy, error) {
			return c.CreatePasswordComplexityPolicy(context.Background(), "acme", policy.Complexity{MinLength: 10})
		}, "POST", "/orgs/acme/policies/complexity"},
		{"update complexity", func(c *Client) (*policy.Policy, error) {
			return c.UpdatePasswordComplexityPolicy(context.Background(), "acme", policy.Complexity{MinLength: 10})
		}, "PUT", "/orgs/acme/policies/complexity"},
		{"create age", func(c *Client) (*policy.Policy, error) {
			return c.CreatePasswordAgePolicy(context.Background(), "acme", policy.Age{MaxAgeDays: 30})
		}, "POST", "/orgs/acme/policies/age"},
		{"update age", func(c *Client) (*policy.Policy, error) {
			return c.UpdatePasswordAgePolicy(context.Background(), "acme", policy.Age{MaxAgeDays: 30})
		}, "PUT", "/orgs/acme/policies/age"},
		{"create lockout", func(c *Client) (*policy.Policy, error) {
			return c.CreatePasswordLockoutPolicy(context.Background(), "acme", policy.Lockout{MaxAttempts: 3})
		}, "POST", "/orgs/acme/policies/lockout"},
		{"update lockout", func(c *Client) (*policy.Policy, error) {
			return c.UpdatePasswordLockoutPolicy(context.Background(), "acme", policy.Lockout{MaxAttempts: 3})
		}, "PUT", "/orgs/acme/policies/lockout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.NotEmpty(t, body)

				writeJSON(w, http.StatusOK, map[string]interface{}{"org_id": "acme", "kind": "age", "default": false})
			})

			p, err := tt.call(c)
			require.NoError(t, err)
			assert.False(t, p.Default)
		})
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		code     int
		sentinel error
	}{
		{http.StatusNotFound, store.ErrNotFound},
		{http.StatusConflict, store.ErrAlreadyExists},
	}
	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tt.code, map[string]interface{}{"error": map[string]string{"message": "nope"}})
		})

		_, err := c.CreatePasswordAgePolicy(context.Background(), "acme", policy.Age{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, tt.sentinel))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tt.code, apiErr.StatusCode)
		assert.Equal(t, "nope", apiErr.Message)
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	err := c.Health(context.Background())
	assert.EqualError(t, err, "request failed with status 502")
	assert.False(t, errors.Is(err, store.ErrNotFound))
}

func TestDeletePolicy(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/orgs/acme/policies/complexity", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeletePolicy(context.Background(), "acme", policy.KindComplexity))
}

func TestCheckOrigin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/origins/_check", r.URL.Path)
		assert.Equal(t, "https://app.acme.com/x?y", r.URL.Query().Get("origin"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"origin": "https://app.acme.com/x?y", "valid": true})
	})

	valid, err := c.CheckOrigin(context.Background(), "https://app.acme.com/x?y")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestFormSubmitThroughClient(t *testing.T) {
	var gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		var l policy.Lockout
		require.NoError(t, json.NewDecoder(r.Body).Decode(&l))
		writeJSON(w, http.StatusCreated, policy.Policy{OrgID: "acme", Kind: policy.KindLockout, Lockout: &l})
	})

	f, err := policy.NewForm(policy.DefaultPolicies().For("acme", policy.KindLockout))
	require.NoError(t, err)
	require.NoError(t, f.SetCounter("max_attempts", 4))

	p, err := f.Submit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, 4, p.Lockout.MaxAttempts)
	assert.Equal(t, policy.ModeModify, f.Mode)
}
