package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/secretbox"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/endpoints"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func testConfig(t *testing.T) *config.IAMConfig {
	t.Helper()
	t.Setenv("IAM_CONFIG_PATH", t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serveAPI serves h and returns a client pointed at it.
func serveAPI(t *testing.T, h http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, "test-token", srv.Client())
}

func fakeAPI(t *testing.T, register func(r *mux.Router)) *client.Client {
	t.Helper()
	r := mux.NewRouter()
	register(r)
	return serveAPI(t, r)
}

func TestIssueToken(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv("IAM_TOKEN_SIGNING_KEY", testSigningKey)

	token, err := issueToken(cfg, &identity.Identity{Subject: "alice", OrgID: "acme", Roles: []string{identity.RoleOrgOwner}}, time.Minute)
	require.NoError(t, err)

	authn, err := authenticator(cfg)
	require.NoError(t, err)
	id, err := authn.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Subject)
	assert.Equal(t, "acme", id.OrgID)
	assert.Equal(t, []string{identity.RoleOrgOwner}, id.Roles)
	assert.WithinDuration(t, time.Now().Add(time.Minute), id.ExpiresAt, 5*time.Second)
}

func TestIssueTokenDefaultsTTL(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv("IAM_TOKEN_SIGNING_KEY", testSigningKey)

	token, err := issueToken(cfg, &identity.Identity{Subject: "ops", Roles: []string{identity.RoleIAMAdmin}}, 0)
	require.NoError(t, err)

	authn, err := authenticator(cfg)
	require.NoError(t, err)
	id, err := authn.Verify(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(cfg.TokenLifetime()), id.ExpiresAt, 5*time.Second)
}

func TestIssueTokenRejects(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name string
		key  string
		id   *identity.Identity
		want string
	}{
		{
			name: "owner without org",
			key:  testSigningKey,
			id:   &identity.Identity{Subject: "alice", Roles: []string{identity.RoleOrgOwner}},
			want: "needs --org",
		},
		{
			name: "unknown role",
			key:  testSigningKey,
			id:   &identity.Identity{Subject: "alice", Roles: []string{"superuser"}},
			want: "unknown role",
		},
		{
			name: "missing key",
			key:  "",
			id:   &identity.Identity{Subject: "ops", Roles: []string{identity.RoleIAMAdmin}},
			want: "IAM_TOKEN_SIGNING_KEY",
		},
		{
			name: "short key",
			key:  "short",
			id:   &identity.Identity{Subject: "ops", Roles: []string{identity.RoleIAMAdmin}},
			want: "signing key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("IAM_TOKEN_SIGNING_KEY", tt.key)
			_, err := issueToken(cfg, tt.id, time.Minute)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestGenerateDataKey(t *testing.T) {
	encoded, err := generateDataKey()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Len(t, raw, secretbox.KeySize)

	_, err = secretbox.NewFromBase64(encoded)
	assert.NoError(t, err)

	other, err := generateDataKey()
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other)
}

func TestCheckOriginLocal(t *testing.T) {
	var out bytes.Buffer
	ok, err := checkOrigin(context.Background(), &out, nil, "https://app.acme.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "is a valid origin")

	out.Reset()
	ok, err = checkOrigin(context.Background(), &out, nil, "app.acme.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "is not a valid origin")
}

func TestCheckOriginRemote(t *testing.T) {
	c := fakeAPI(t, func(r *mux.Router) {
		r.HandleFunc("/origins/_check", func(w http.ResponseWriter, r *http.Request) {
			o := r.URL.Query().Get("origin")
			writeJSON(w, http.StatusOK, endpoints.OriginCheckResponse{Origin: o, Valid: o == "https://app.acme.com"})
		})
	})

	var out bytes.Buffer
	ok, err := checkOrigin(context.Background(), &out, c, "https://app.acme.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checkOrigin(context.Background(), &out, c, "https://other.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShowConfiguration(t *testing.T) {
	t.Setenv("IAM_CONFIG_PATH", t.TempDir())
	t.Setenv("IAM_LOG_LEVEL", "debug")

	var out bytes.Buffer
	require.NoError(t, showConfiguration(&out, "text"))
	assert.Contains(t, out.String(), "log_level")
	assert.Contains(t, out.String(), config.SourceEnvironment)

	out.Reset()
	require.NoError(t, showConfiguration(&out, "json"))
	var decoded struct {
		ConfigFile string             `json:"config_file"`
		Attributes []config.Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.NotEmpty(t, decoded.Attributes)
}

func TestValidateConfiguration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IAM_CONFIG_PATH", dir)
	t.Setenv("DATABASE_URL", "postgres://localhost/iam")
	t.Setenv("IAM_DATA_KEY", "key")
	t.Setenv("IAM_TOKEN_SIGNING_KEY", testSigningKey)

	var out bytes.Buffer
	require.NoError(t, applyConfiguration(&out, true))
	assert.Contains(t, out.String(), "Configuration is valid.")

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("log_format: xml\n"), 0o600))
	assert.ErrorContains(t, validateConfiguration(&out), "log_format")

	require.NoError(t, os.Remove(filepath.Join(dir, config.ConfigFileName)))
	t.Setenv("IAM_DATA_KEY", "")
	assert.ErrorContains(t, validateConfiguration(&out), "IAM_DATA_KEY")
}

func TestWaitForServer(t *testing.T) {
	var calls atomic.Int32
	c := fakeAPI(t, func(r *mux.Router) {
		r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"error": map[string]string{"message": "database connectivity check failed"}})
				return
			}
			writeJSON(w, http.StatusOK, endpoints.StatusResponse{Status: "ok"})
		})
	})

	var out bytes.Buffer
	require.NoError(t, waitForServer(context.Background(), &out, c, 10, time.Millisecond))
	assert.Contains(t, out.String(), "Server is ready!")
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(-100)
	err := waitForServer(context.Background(), &out, c, 2, time.Millisecond)
	assert.ErrorContains(t, err, "not ready after 2 attempts")
}

func TestOrgCommands(t *testing.T) {
	created := endpoints.OrgRequest{}
	c := fakeAPI(t, func(r *mux.Router) {
		r.HandleFunc("/orgs", func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			writeJSON(w, http.StatusCreated, model.Org{ID: "6f1c3b9e-2a57-4f0e-9d3a-1b2c3d4e5f60", Name: created.Name, State: model.StateActive})
		}).Methods(http.MethodPost)
		r.HandleFunc("/orgs", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, endpoints.OrgsResponse{Orgs: []model.Org{{
				ID:             "6f1c3b9e-2a57-4f0e-9d3a-1b2c3d4e5f60",
				Name:           "acme",
				State:          model.StateActive,
				PrimaryDomain:  "acme.com",
				AllowedOrigins: []string{"https://app.acme.com", "https://admin.acme.com"},
			}}})
		}).Methods(http.MethodGet)
	})

	var out bytes.Buffer
	req := endpoints.OrgRequest{Name: "acme", PrimaryDomain: "acme.com", AllowedOrigins: []string{"https://app.acme.com"}}
	require.NoError(t, createOrg(context.Background(), &out, c, req))
	assert.Equal(t, req, created)
	assert.Contains(t, out.String(), "Created organization 'acme' with id 6f1c3b9e-2a57-4f0e-9d3a-1b2c3d4e5f60")

	out.Reset()
	require.NoError(t, listOrgs(context.Background(), &out, c, "text"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "https://app.acme.com,https://admin.acme.com")

	out.Reset()
	require.NoError(t, listOrgs(context.Background(), &out, c, "json"))
	var orgs []model.Org
	require.NoError(t, json.Unmarshal(out.Bytes(), &orgs))
	require.Len(t, orgs, 1)
	assert.Equal(t, "acme", orgs[0].Name)
}
