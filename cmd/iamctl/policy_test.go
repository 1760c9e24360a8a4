package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/endpoints"
)

// memoryManager keeps policies in memory and counts submissions.
type memoryManager struct {
	mu       sync.Mutex
	policies map[string]map[policy.Kind]*policy.Policy
	submits  int
}

func newMemoryManager() *memoryManager {
	return &memoryManager{policies: map[string]map[policy.Kind]*policy.Policy{}}
}

func (m *memoryManager) Submits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submits
}

func (m *memoryManager) GetPolicy(_ context.Context, orgID string, kind policy.Kind) (*policy.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.policies[orgID][kind]; ok {
		cp := *p
		return &cp, nil
	}
	return policy.DefaultPolicies().For(orgID, kind), nil
}

func (m *memoryManager) put(orgID string, p *policy.Policy) (*policy.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submits++
	if m.policies[orgID] == nil {
		m.policies[orgID] = map[policy.Kind]*policy.Policy{}
	}
	p.OrgID = orgID
	m.policies[orgID][p.Kind] = p
	cp := *p
	return &cp, nil
}

func (m *memoryManager) CreatePasswordComplexityPolicy(_ context.Context, orgID string, c policy.Complexity) (*policy.Policy, error) {
	return m.put(orgID, &policy.Policy{Kind: policy.KindComplexity, Complexity: &c})
}

func (m *memoryManager) UpdatePasswordComplexityPolicy(_ context.Context, orgID string, c policy.Complexity) (*policy.Policy, error) {
	return m.put(orgID, &policy.Policy{Kind: policy.KindComplexity, Complexity: &c})
}

func (m *memoryManager) CreatePasswordAgePolicy(_ context.Context, orgID string, a policy.Age) (*policy.Policy, error) {
	return m.put(orgID, &policy.Policy{Kind: policy.KindAge, Age: &a})
}

func (m *memoryManager) UpdatePasswordAgePolicy(_ context.Context, orgID string, a policy.Age) (*policy.Policy, error) {
	return m.put(orgID, &policy.Policy{Kind: policy.KindAge, Age: &a})
}

func (m *memoryManager) CreatePasswordLockoutPolicy(_ context.Context, orgID string, l policy.Lockout) (*policy.Policy, error) {
	return m.put(orgID, &policy.Policy{Kind: policy.KindLockout, Lockout: &l})
}

func (m *memoryManager) UpdatePasswordLockoutPolicy(_ context.Context, orgID string, l policy.Lockout) (*policy.Policy, error) {
	return m.put(orgID, &policy.Policy{Kind: policy.KindLockout, Lockout: &l})
}

const acmeDocument = `acme:
  - !complexity
    min_length: 12
    has_uppercase: true
    has_lowercase: true
    has_number: true
    has_symbol: true
  - !lockout
    max_attempts: 5
    show_lockout_failures: true
`

func writeDocument(t *testing.T, dir, content string) string {
	t.Helper()
	name := filepath.Join(dir, "policies.yml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func TestApplyPolicyFile(t *testing.T) {
	m := newMemoryManager()
	name := writeDocument(t, t.TempDir(), acmeDocument)

	var out bytes.Buffer
	require.NoError(t, applyPolicyFile(context.Background(), &out, m, name))
	assert.Equal(t, "acme: complexity policy created\nacme: lockout policy created\n", out.String())

	p, err := m.GetPolicy(context.Background(), "acme", policy.KindComplexity)
	require.NoError(t, err)
	assert.False(t, p.Default)
	assert.Equal(t, 12, p.Complexity.MinLength)

	out.Reset()
	require.NoError(t, applyPolicyFile(context.Background(), &out, m, name))
	assert.Equal(t, "acme: complexity policy unchanged\nacme: lockout policy unchanged\n", out.String())
	assert.Equal(t, 2, m.Submits())

	name = writeDocument(t, t.TempDir(), strings.Replace(acmeDocument, "max_attempts: 5", "max_attempts: 3", 1))
	out.Reset()
	require.NoError(t, applyPolicyFile(context.Background(), &out, m, name))
	assert.Contains(t, out.String(), "acme: lockout policy modified")
}

func TestApplyPolicyFileErrors(t *testing.T) {
	m := newMemoryManager()

	err := applyPolicyFile(context.Background(), &bytes.Buffer{}, m, filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "failed to open policy file")

	name := writeDocument(t, t.TempDir(), "acme:\n  - !complexity\n    min_length: 0\n")
	err = applyPolicyFile(context.Background(), &bytes.Buffer{}, m, name)
	assert.ErrorContains(t, err, "min_length")
	assert.Zero(t, m.Submits())
}

func TestWatchPolicy(t *testing.T) {
	m := newMemoryManager()
	dir := t.TempDir()
	name := writeDocument(t, dir, acmeDocument)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- watchPolicy(ctx, &lockedWriter{w: &out}, m, name) }()

	assert.Eventually(t, func() bool { return m.Submits() == 2 }, 5*time.Second, 10*time.Millisecond)

	writeDocument(t, dir, strings.Replace(acmeDocument, "min_length: 12", "min_length: 16", 1))
	assert.Eventually(t, func() bool {
		p, _ := m.GetPolicy(context.Background(), "acme", policy.KindComplexity)
		return p.Complexity.MinLength == 16
	}, 5*time.Second, 10*time.Millisecond)

	// other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func acmePolicies() []*policy.Policy {
	d := policy.DefaultPolicies()
	complexity := &policy.Policy{OrgID: "acme-id", Kind: policy.KindComplexity, Complexity: &policy.Complexity{MinLength: 12, HasSymbol: true}}
	return []*policy.Policy{complexity, d.For("acme-id", policy.KindAge), d.For("acme-id", policy.KindLockout)}
}

func policyAPI(t *testing.T) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/orgs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, endpoints.OrgsResponse{Orgs: []model.Org{{ID: "acme-id", Name: "acme"}}})
	})
	r.HandleFunc("/orgs/{org}/policies", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["org"] != "acme" {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": map[string]string{"message": "Organization not found"}})
			return
		}
		writeJSON(w, http.StatusOK, endpoints.PolicyGridResponse{Policies: acmePolicies()})
	})
	r.HandleFunc("/orgs/{org}/policies/{kind}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, acmePolicies()[0])
	})
	r.HandleFunc("/orgs/{org}/policies/complexity/_check", func(w http.ResponseWriter, r *http.Request) {
		var req endpoints.PasswordCheckRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		c := acmePolicies()[0].Complexity
		violations := c.CheckPassword(req.Password)
		writeJSON(w, http.StatusOK, endpoints.PasswordCheckResponse{Valid: len(violations) == 0, Violations: violations})
	}).Methods(http.MethodPost)
	return r
}

func TestExportPolicies(t *testing.T) {
	c := serveAPI(t, policyAPI(t))

	var out bytes.Buffer
	require.NoError(t, exportPolicies(context.Background(), &out, c, nil, false))
	assert.Contains(t, out.String(), "!complexity")
	assert.NotContains(t, out.String(), "!age")

	doc, err := policy.ParseDocument(&out)
	require.NoError(t, err)
	require.Len(t, doc["acme"], 1)
	assert.Equal(t, 12, doc["acme"][0].Complexity.MinLength)

	out.Reset()
	require.NoError(t, exportPolicies(context.Background(), &out, c, []string{"acme"}, true))
	doc, err = policy.ParseDocument(&out)
	require.NoError(t, err)
	assert.Len(t, doc["acme"], 3)

	err = exportPolicies(context.Background(), &out, c, []string{"globex"}, false)
	assert.ErrorContains(t, err, "Organization not found")
}

func TestShowPolicies(t *testing.T) {
	c := serveAPI(t, policyAPI(t))

	var out bytes.Buffer
	require.NoError(t, showPolicies(context.Background(), &out, c, "acme", "", "text"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "complexity")
	assert.Contains(t, lines[1], "org")
	assert.Contains(t, lines[1], `"min_length":12`)
	assert.Contains(t, lines[2], "default")

	out.Reset()
	require.NoError(t, showPolicies(context.Background(), &out, c, "acme", "complexity", "json"))
	var policies []*policy.Policy
	require.NoError(t, json.Unmarshal(out.Bytes(), &policies))
	require.Len(t, policies, 1)
	assert.Equal(t, policy.KindComplexity, policies[0].Kind)

	assert.Error(t, showPolicies(context.Background(), &out, c, "acme", "strength", "text"))
}

func TestCheckPassword(t *testing.T) {
	c := serveAPI(t, policyAPI(t))

	var out bytes.Buffer
	ok, err := checkPassword(context.Background(), strings.NewReader("correct-horse-battery\n"), &out, c, "acme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Password accepted\n", out.String())

	out.Reset()
	ok, err = checkPassword(context.Background(), strings.NewReader("short"), &out, c, "acme")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Password rejected: too_short")
	assert.Contains(t, out.String(), "Password rejected: missing_symbol")
}
