package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &policy.ValidationError{Field: "min_length", Reason: "must be at least 1"}, http.StatusBadRequest},
		{"invalid origin", fmt.Errorf("wrapped: %w", &origin.InvalidError{Origin: "ftp://x"}), http.StatusBadRequest},
		{"bad request", badRequestf("invalid request body"), http.StatusBadRequest},
		{"not found", fmt.Errorf("policy: %w", store.ErrNotFound), http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

// TestAuthorization verifies role checks on organization routes
func TestAuthorization(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, "GET", "/orgs/acme", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		ts.orgs.AssertNotCalled(t, "GetOrg", "acme")
	})

	t.Run("admin may manage any org", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)

		w := ts.do(t, "GET", "/orgs/acme", ts.adminToken(t), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("owner may manage own org by name or id", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)

		for _, claim := range []string{"acme", acmeID} {
			w := ts.do(t, "GET", "/orgs/acme", ts.ownerToken(t, claim), nil)
			assert.Equal(t, http.StatusOK, w.Code, claim)
		}
	})

	t.Run("owner of another org is forbidden", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)

		w := ts.do(t, "GET", "/orgs/acme", ts.ownerToken(t, "globex"), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Forbidden", errorMessage(t, w))
	})

	t.Run("token without a role is forbidden", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)

		w := ts.do(t, "GET", "/orgs/acme", ts.token(t, "mallory", "acme"), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner may not use admin routes", func(t *testing.T) {
		ts := newTestServer(t)

		for _, path := range []string{"/smtp"} {
			w := ts.do(t, "GET", path, ts.ownerToken(t, "acme"), nil)
			assert.Equal(t, http.StatusForbidden, w.Code, path)
		}
		w := ts.do(t, "POST", "/orgs", ts.ownerToken(t, "acme"), OrgRequest{Name: "globex"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = ts.do(t, "POST", "/orgs/acme/_deactivate", ts.ownerToken(t, "acme"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown org", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "nope").Return(nil, store.ErrNotFound)

		w := ts.do(t, "GET", "/orgs/nope", ts.adminToken(t), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("owner gets 403 for an unknown org", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "nope").Return(nil, store.ErrNotFound)

		w := ts.do(t, "GET", "/orgs/nope", ts.ownerToken(t, "acme"), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Forbidden", errorMessage(t, w))
	})

	t.Run("owner id claim does not match an org named by that id", func(t *testing.T) {
		ts := newTestServer(t)
		other := &model.Org{ID: "11111111-1111-4111-8111-111111111111", Name: acmeID, State: model.StateActive}
		ts.orgs.On("GetOrg", other.ID).Return(other, nil)

		w := ts.do(t, "GET", "/orgs/"+other.ID, ts.ownerToken(t, acmeID), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCanManage(t *testing.T) {
	org := acmeOrg()
	assert.True(t, canManage(&identity.Identity{Roles: []string{identity.RoleIAMAdmin}}, org))
	assert.True(t, canManage(&identity.Identity{OrgID: "acme", Roles: []string{identity.RoleOrgOwner}}, org))
	assert.False(t, canManage(&identity.Identity{OrgID: "", Roles: []string{identity.RoleOrgOwner}}, org))
	assert.True(t, canManage(&identity.Identity{OrgID: acmeID, Roles: []string{identity.RoleOrgOwner}}, org))

	// A UUID claim only ever matches the id, a name claim only the name.
	impostor := &model.Org{ID: "11111111-1111-4111-8111-111111111111", Name: acmeID}
	assert.False(t, canManage(&identity.Identity{OrgID: acmeID, Roles: []string{identity.RoleOrgOwner}}, impostor))
	named := &model.Org{ID: "22222222-2222-4222-8222-222222222222", Name: "globex"}
	assert.False(t, canManage(&identity.Identity{OrgID: "acme", Roles: []string{identity.RoleOrgOwner}}, named))
}
