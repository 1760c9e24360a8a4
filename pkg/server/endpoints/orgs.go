package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// OrgRequest is the body of org create and update requests.
type OrgRequest struct {
	Name           string   `json:"name"`
	PrimaryDomain  string   `json:"primary_domain"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// OrgsResponse lists organizations.
type OrgsResponse struct {
	Orgs []model.Org `json:"orgs"`
}

// RegisterOrgsEndpoints registers the organization endpoints
func RegisterOrgsEndpoints(s *server.Server) {
	orgs := s.OrgsStore

	// GET /orgs - List the organizations the caller may manage
	s.Router.Handle("/orgs", protected(s, handleListOrgs(orgs))).Methods("GET")

	// POST /orgs - Create an organization (iam_admin)
	s.Router.Handle("/orgs", protected(s, handleCreateOrg(orgs))).Methods("POST")

	s.Router.Handle("/orgs/{org}", protected(s, handleGetOrg(orgs))).Methods("GET")
	s.Router.Handle("/orgs/{org}", protected(s, handleUpdateOrg(orgs))).Methods("PUT")

	// DELETE /orgs/{org} - Remove an organization with everything it owns (iam_admin)
	s.Router.Handle("/orgs/{org}", protected(s, handleDeleteOrg(orgs))).Methods("DELETE")

	s.Router.Handle("/orgs/{org}/_deactivate", protected(s, handleSetOrgState(orgs, model.StateInactive))).Methods("POST")
	s.Router.Handle("/orgs/{org}/_reactivate", protected(s, handleSetOrgState(orgs, model.StateActive))).Methods("POST")
}

// normalizeOrigins normalizes and dedupes origins, keeping their order.
func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = origin.Normalize(o)
		if !origin.Contains(out, o) {
			out = append(out, o)
		}
	}
	return out
}

func (req *OrgRequest) apply(org *model.Org) {
	org.Name = req.Name
	org.PrimaryDomain = req.PrimaryDomain
	org.AllowedOrigins = normalizeOrigins(req.AllowedOrigins)
}

func handleListOrgs(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		all, err := orgs.ListOrgs(r.Context())
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		visible := make([]model.Org, 0, len(all))
		for i := range all {
			if canManage(id, &all[i]) {
				visible = append(visible, all[i])
			}
		}
		respondWithJSON(w, http.StatusOK, OrgsResponse{Orgs: visible})
	}
}

func handleCreateOrg(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAdmin(w, r)
		if !ok {
			return
		}

		var req OrgRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		org := &model.Org{}
		req.apply(org)
		err := org.Validate()
		if err == nil {
			err = orgs.CreateOrg(r.Context(), org)
		}
		recordChange(id, org.ID, "org", org.Name, audit.OperationCreate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, org)
	}
}

func handleGetOrg(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}
		respondWithJSON(w, http.StatusOK, org)
	}
}

func handleUpdateOrg(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		var req OrgRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		req.apply(org)
		err := org.Validate()
		if err == nil {
			err = orgs.UpdateOrg(r.Context(), org)
		}
		recordChange(id, org.ID, "org", org.Name, audit.OperationUpdate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, org)
	}
}

func handleDeleteOrg(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAdmin(w, r)
		if !ok {
			return
		}

		org, err := orgs.GetOrg(r.Context(), pathVar(r, "org"))
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		err = orgs.DeleteOrg(r.Context(), org.ID)
		recordChange(id, org.ID, "org", org.Name, audit.OperationDelete, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetOrgState(orgs store.OrgsStore, state model.State) http.HandlerFunc {
	op := audit.OperationReactivate
	if state == model.StateInactive {
		op = audit.OperationDeactivate
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAdmin(w, r)
		if !ok {
			return
		}

		org, err := orgs.GetOrg(r.Context(), pathVar(r, "org"))
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		err = orgs.SetOrgState(r.Context(), org.ID, state)
		recordChange(id, org.ID, "org", org.Name, op, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		org.State = state
		respondWithJSON(w, http.StatusOK, org)
	}
}
