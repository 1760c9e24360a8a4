package endpoints

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// forbid logs the denial and responds 403.
func forbid(w http.ResponseWriter, r *http.Request, id *identity.Identity, reason string) {
	event := audit.DeniedEvent{
		Method: r.Method,
		Path:   r.URL.Path,
		Reason: reason,
	}
	if id != nil {
		event.Actor = id.Subject
		event.ClientIP = id.ClientIP()
	}
	audit.Log(event)
	respondWithMessage(w, http.StatusForbidden, "Forbidden")
}

// requireIdentity returns the authenticated identity. Handlers behind the
// token middleware always have one.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := identity.Get(r.Context())
	if !ok {
		respondWithMessage(w, http.StatusUnauthorized, "Authorization missing")
		return nil, false
	}
	return id, true
}

// requireAdmin lets only instance administrators through.
func requireAdmin(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return nil, false
	}
	if !id.IsIAMAdmin() {
		forbid(w, r, id, "requires the "+identity.RoleIAMAdmin+" role")
		return nil, false
	}
	return id, true
}

// canManage reports whether id may manage org. An owner claim that parses as
// a UUID names the organization by id, any other claim names it by name.
func canManage(id *identity.Identity, org *model.Org) bool {
	if _, err := uuid.Parse(id.OrgID); err == nil {
		return id.CanManageOrg(org.ID)
	}
	return id.CanManageOrg(org.Name)
}

// loadOrg resolves the {org} route variable and checks that the caller may
// manage it.
func loadOrg(orgs store.OrgsStore, w http.ResponseWriter, r *http.Request) (*model.Org, *identity.Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return nil, nil, false
	}

	ref := pathVar(r, "org")
	org, err := orgs.GetOrg(r.Context(), ref)
	if errors.Is(err, store.ErrNotFound) && !id.IsIAMAdmin() {
		// Owners learn nothing about orgs they do not manage.
		forbid(w, r, id, "not an owner of org "+ref)
		return nil, nil, false
	}
	if err != nil {
		respondWithStoreError(w, r, err)
		return nil, nil, false
	}
	if !canManage(id, org) {
		forbid(w, r, id, "not an owner of org "+org.Name)
		return nil, nil, false
	}
	return org, id, true
}

// recordChange writes an audit event for a mutation. err is the outcome.
func recordChange(id *identity.Identity, orgID, resource, resourceID string, op audit.Operation, err error) {
	event := audit.ChangeEvent{
		Actor:      id.Subject,
		ClientIP:   id.ClientIP(),
		OrgID:      orgID,
		Resource:   resource,
		ResourceID: resourceID,
		Operation:  op,
		Success:    err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}
