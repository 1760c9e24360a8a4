package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/customtext"
	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/middleware"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

func init() {
	audit.SetEnabled(false)
}

// MockOrgsStore implements store.OrgsStore for testing using testify/mock
type MockOrgsStore struct {
	mock.Mock
}

func (m *MockOrgsStore) ListOrgs(ctx context.Context) ([]model.Org, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Org), args.Error(1)
}

func (m *MockOrgsStore) GetOrg(ctx context.Context, ref string) (*model.Org, error) {
	args := m.Called(ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Copy so handlers mutating the org don't change the fixture.
	org := *args.Get(0).(*model.Org)
	return &org, args.Error(1)
}

func (m *MockOrgsStore) CreateOrg(ctx context.Context, org *model.Org) error {
	args := m.Called(org)
	if org.ID == "" {
		org.ID = "11111111-1111-1111-1111-111111111111"
	}
	return args.Error(0)
}

func (m *MockOrgsStore) UpdateOrg(ctx context.Context, org *model.Org) error {
	return m.Called(org).Error(0)
}

func (m *MockOrgsStore) DeleteOrg(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockOrgsStore) SetOrgState(ctx context.Context, id string, state model.State) error {
	return m.Called(id, state).Error(0)
}

func (m *MockOrgsStore) AddAllowedOrigin(ctx context.Context, id, origin string) ([]string, error) {
	args := m.Called(id, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOrgsStore) RemoveAllowedOrigin(ctx context.Context, id, origin string) ([]string, error) {
	args := m.Called(id, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOrgsStore) AllowedOrigins(ctx context.Context) ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

// MockPoliciesStore implements store.PoliciesStore for testing using testify/mock
type MockPoliciesStore struct {
	mock.Mock
}

func (m *MockPoliciesStore) GetPolicy(ctx context.Context, orgID string, kind policy.Kind) (*policy.Policy, error) {
	args := m.Called(orgID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *MockPoliciesStore) CreatePolicy(ctx context.Context, p *policy.Policy) (*policy.Policy, error) {
	args := m.Called(p)
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	return p, nil
}

func (m *MockPoliciesStore) UpdatePolicy(ctx context.Context, p *policy.Policy) (*policy.Policy, error) {
	args := m.Called(p)
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	return p, nil
}

func (m *MockPoliciesStore) DeletePolicy(ctx context.Context, orgID string, kind policy.Kind) error {
	return m.Called(orgID, kind).Error(0)
}

// MockSMTPStore implements store.SMTPStore for testing using testify/mock
type MockSMTPStore struct {
	mock.Mock
}

func (m *MockSMTPStore) GetSMTPConfig(ctx context.Context) (*model.SMTPConfig, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SMTPConfig), args.Error(1)
}

func (m *MockSMTPStore) SaveSMTPConfig(ctx context.Context, cfg *model.SMTPConfig) error {
	return m.Called(cfg).Error(0)
}

// MockIDPsStore implements store.IDPsStore for testing using testify/mock
type MockIDPsStore struct {
	mock.Mock
}

func (m *MockIDPsStore) ListIDPs(ctx context.Context, orgID string) ([]model.IDPConfig, error) {
	args := m.Called(orgID)
	return args.Get(0).([]model.IDPConfig), args.Error(1)
}

func (m *MockIDPsStore) GetIDP(ctx context.Context, orgID, id string) (*model.IDPConfig, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	idp := *args.Get(0).(*model.IDPConfig)
	return &idp, args.Error(1)
}

func (m *MockIDPsStore) CreateIDP(ctx context.Context, idp *model.IDPConfig) error {
	args := m.Called(idp)
	if idp.ID == "" {
		idp.ID = "22222222-2222-2222-2222-222222222222"
	}
	return args.Error(0)
}

func (m *MockIDPsStore) UpdateIDP(ctx context.Context, idp *model.IDPConfig) error {
	return m.Called(idp).Error(0)
}

func (m *MockIDPsStore) DeleteIDP(ctx context.Context, orgID, id string) error {
	return m.Called(orgID, id).Error(0)
}

func (m *MockIDPsStore) SetIDPState(ctx context.Context, orgID, id string, state model.State) error {
	return m.Called(orgID, id, state).Error(0)
}

// MockTextsStore implements store.TextsStore for testing using testify/mock
type MockTextsStore struct {
	mock.Mock
}

func (m *MockTextsStore) GetCustomText(ctx context.Context, orgID string, key customtext.Key, lang string) (*model.CustomText, error) {
	args := m.Called(orgID, key, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomText), args.Error(1)
}

func (m *MockTextsStore) SetCustomText(ctx context.Context, text *model.CustomText) error {
	return m.Called(text).Error(0)
}

func (m *MockTextsStore) ResetCustomText(ctx context.Context, orgID string, key customtext.Key, lang string) error {
	return m.Called(orgID, key, lang).Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	return m.Called().Error(0)
}

var (
	_ store.OrgsStore     = (*MockOrgsStore)(nil)
	_ store.PoliciesStore = (*MockPoliciesStore)(nil)
	_ store.SMTPStore     = (*MockSMTPStore)(nil)
	_ store.IDPsStore     = (*MockIDPsStore)(nil)
	_ store.TextsStore    = (*MockTextsStore)(nil)
	_ store.HealthStore   = (*MockHealthStore)(nil)
)

const acmeID = "8f14e45f-ceea-467f-a8f0-c3b5a1e2d001"

func acmeOrg() *model.Org {
	return &model.Org{
		ID:             acmeID,
		Name:           "acme",
		State:          model.StateActive,
		AllowedOrigins: []string{"https://app.acme.com"},
	}
}

// testServer is a server backed by mock stores.
type testServer struct {
	*server.Server
	orgs     *MockOrgsStore
	policies *MockPoliciesStore
	smtp     *MockSMTPStore
	idps     *MockIDPsStore
	texts    *MockTextsStore
	health   *MockHealthStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	auth, err := middleware.NewJWTAuthenticator([]byte(strings.Repeat("s", middleware.MinSigningKeySize)), "iam-admin")
	require.NoError(t, err)

	t.Setenv("IAM_CONFIG_PATH", t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)

	ts := &testServer{
		orgs:     &MockOrgsStore{},
		policies: &MockPoliciesStore{},
		smtp:     &MockSMTPStore{},
		idps:     &MockIDPsStore{},
		texts:    &MockTextsStore{},
		health:   &MockHealthStore{},
	}
	ts.Server = &server.Server{
		Router:        mux.NewRouter().UseEncodedPath(),
		Config:        cfg,
		Authenticator: auth,
		HealthStore:   ts.health,
		OrgsStore:     ts.orgs,
		PoliciesStore: ts.policies,
		SMTPStore:     ts.smtp,
		IDPsStore:     ts.idps,
		TextsStore:    ts.texts,
	}
	RegisterAll(ts.Server)
	return ts
}

func (ts *testServer) token(t *testing.T, subject, org string, roles ...string) string {
	t.Helper()
	token, err := ts.Authenticator.Issue(&identity.Identity{Subject: subject, OrgID: org, Roles: roles}, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) adminToken(t *testing.T) string {
	return ts.token(t, "alice", "", identity.RoleIAMAdmin)
}

func (ts *testServer) ownerToken(t *testing.T, org string) string {
	return ts.token(t, "bob", org, identity.RoleOrgOwner)
}

// do serves a request through the router. body is JSON-encoded unless nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error.Message
}
