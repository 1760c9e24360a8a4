package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

func TestListOrgs(t *testing.T) {
	globex := model.Org{ID: "c81e728d-9d4c-4f63-9b2c-000000000002", Name: "globex", State: model.StateActive}
	all := []model.Org{*acmeOrg(), globex}

	t.Run("admin sees every org", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("ListOrgs").Return(all, nil)

		w := ts.do(t, "GET", "/orgs", ts.adminToken(t), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp OrgsResponse
		decodeBody(t, w, &resp)
		assert.Len(t, resp.Orgs, 2)
	})

	t.Run("owner sees only its org", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("ListOrgs").Return(all, nil)

		w := ts.do(t, "GET", "/orgs", ts.ownerToken(t, "globex"), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp OrgsResponse
		decodeBody(t, w, &resp)
		require.Len(t, resp.Orgs, 1)
		assert.Equal(t, "globex", resp.Orgs[0].Name)
	})
}

func TestCreateOrg(t *testing.T) {
	t.Run("normalizes and dedupes origins", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("CreateOrg", mock.MatchedBy(func(o *model.Org) bool {
			return o.Name == "acme" &&
				len(o.AllowedOrigins) == 1 &&
				o.AllowedOrigins[0] == "https://app.acme.com"
		})).Return(nil)

		w := ts.do(t, "POST", "/orgs", ts.adminToken(t), OrgRequest{
			Name:           "acme",
			AllowedOrigins: []string{"https://app.acme.com/", " https://app.acme.com"},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		ts.orgs.AssertExpectations(t)
	})

	t.Run("invalid origin", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, "POST", "/orgs", ts.adminToken(t), OrgRequest{
			Name:           "acme",
			AllowedOrigins: []string{"app.acme.com"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorMessage(t, w), "app.acme.com")
		ts.orgs.AssertNotCalled(t, "CreateOrg", mock.Anything)
	})

	t.Run("missing name", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, "POST", "/orgs", ts.adminToken(t), OrgRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name is required", errorMessage(t, w))
	})

	t.Run("uuid-shaped name", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, "POST", "/orgs", ts.adminToken(t), OrgRequest{Name: acmeID})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name must not be a UUID", errorMessage(t, w))
		ts.orgs.AssertNotCalled(t, "CreateOrg", mock.Anything)
	})

	t.Run("name taken", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("CreateOrg", mock.Anything).Return(store.ErrAlreadyExists)

		w := ts.do(t, "POST", "/orgs", ts.adminToken(t), OrgRequest{Name: "acme"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, "POST", "/orgs", ts.adminToken(t), map[string]string{"nmae": "acme"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateOrg(t *testing.T) {
	ts := newTestServer(t)
	ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
	ts.orgs.On("UpdateOrg", mock.MatchedBy(func(o *model.Org) bool {
		return o.ID == acmeID && o.PrimaryDomain == "acme.com"
	})).Return(nil)

	w := ts.do(t, "PUT", "/orgs/acme", ts.ownerToken(t, "acme"), OrgRequest{
		Name:           "acme",
		PrimaryDomain:  "acme.com",
		AllowedOrigins: []string{"https://app.acme.com"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var org model.Org
	decodeBody(t, w, &org)
	assert.Equal(t, "acme.com", org.PrimaryDomain)
	ts.orgs.AssertExpectations(t)
}

func TestDeleteOrg(t *testing.T) {
	ts := newTestServer(t)
	ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
	ts.orgs.On("DeleteOrg", acmeID).Return(nil)

	w := ts.do(t, "DELETE", "/orgs/acme", ts.adminToken(t), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	ts.orgs.AssertExpectations(t)
}

func TestSetOrgState(t *testing.T) {
	ts := newTestServer(t)
	ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
	ts.orgs.On("SetOrgState", acmeID, model.StateInactive).Return(nil)
	ts.orgs.On("SetOrgState", acmeID, model.StateActive).Return(nil)

	w := ts.do(t, "POST", "/orgs/acme/_deactivate", ts.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var org model.Org
	decodeBody(t, w, &org)
	assert.Equal(t, model.StateInactive, org.State)

	w = ts.do(t, "POST", "/orgs/acme/_reactivate", ts.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &org)
	assert.Equal(t, model.StateActive, org.State)
}
