package endpoints

import (
	"net/http"
	"time"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// IDPRequest creates or updates an OIDC identity provider. An empty client
// secret on update keeps the stored one.
type IDPRequest struct {
	Name         string            `json:"name"`
	Issuer       string            `json:"issuer"`
	ClientID     string            `json:"client_id"`
	ClientSecret string            `json:"client_secret,omitempty"`
	Scopes       []string          `json:"scopes"`
	StylingType  model.StylingType `json:"styling_type"`
}

// IDPResponse never includes the client secret.
type IDPResponse struct {
	ID              string            `json:"id"`
	OrgID           string            `json:"org_id"`
	Name            string            `json:"name"`
	Issuer          string            `json:"issuer"`
	ClientID        string            `json:"client_id"`
	Scopes          []string          `json:"scopes"`
	StylingType     model.StylingType `json:"styling_type"`
	State           model.State       `json:"state"`
	HasClientSecret bool              `json:"has_client_secret"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IDPsResponse lists the identity providers of an organization.
type IDPsResponse struct {
	IDPs []IDPResponse `json:"idps"`
}

func newIDPResponse(idp *model.IDPConfig) IDPResponse {
	return IDPResponse{
		ID:              idp.ID,
		OrgID:           idp.OrgID,
		Name:            idp.Name,
		Issuer:          idp.Issuer,
		ClientID:        idp.ClientID,
		Scopes:          idp.Scopes,
		StylingType:     idp.StylingType,
		State:           idp.State,
		HasClientSecret: idp.ClientSecret != "" || len(idp.SealedClientSecret) > 0,
		CreatedAt:       idp.CreatedAt,
		UpdatedAt:       idp.UpdatedAt,
	}
}

func (req *IDPRequest) apply(idp *model.IDPConfig) {
	idp.Name = req.Name
	idp.Issuer = req.Issuer
	idp.ClientID = req.ClientID
	idp.ClientSecret = req.ClientSecret
	idp.StylingType = req.StylingType
	if req.Scopes != nil {
		idp.Scopes = req.Scopes
	}
}

// RegisterIDPsEndpoints registers the identity provider endpoints
func RegisterIDPsEndpoints(s *server.Server) {
	orgs := s.OrgsStore
	idps := s.IDPsStore

	s.Router.Handle("/orgs/{org}/idps", protected(s, handleListIDPs(orgs, idps))).Methods("GET")
	s.Router.Handle("/orgs/{org}/idps", protected(s, handleCreateIDP(orgs, idps))).Methods("POST")

	s.Router.Handle("/orgs/{org}/idps/{id}", protected(s, handleGetIDP(orgs, idps))).Methods("GET")
	s.Router.Handle("/orgs/{org}/idps/{id}", protected(s, handleUpdateIDP(orgs, idps))).Methods("PUT")
	s.Router.Handle("/orgs/{org}/idps/{id}", protected(s, handleDeleteIDP(orgs, idps))).Methods("DELETE")

	s.Router.Handle("/orgs/{org}/idps/{id}/_deactivate", protected(s, handleSetIDPState(orgs, idps, model.StateInactive))).Methods("POST")
	s.Router.Handle("/orgs/{org}/idps/{id}/_reactivate", protected(s, handleSetIDPState(orgs, idps, model.StateActive))).Methods("POST")
}

func handleListIDPs(orgs store.OrgsStore, idps store.IDPsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		list, err := idps.ListIDPs(r.Context(), org.ID)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		resp := IDPsResponse{IDPs: make([]IDPResponse, 0, len(list))}
		for i := range list {
			resp.IDPs = append(resp.IDPs, newIDPResponse(&list[i]))
		}
		respondWithJSON(w, http.StatusOK, resp)
	}
}

func handleCreateIDP(orgs store.OrgsStore, idps store.IDPsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		var req IDPRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		idp := &model.IDPConfig{OrgID: org.ID}
		req.apply(idp)
		err := idp.Validate()
		if err == nil {
			err = idps.CreateIDP(r.Context(), idp)
		}
		recordChange(id, org.ID, "idp", idp.Name, audit.OperationCreate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, newIDPResponse(idp))
	}
}

func handleGetIDP(orgs store.OrgsStore, idps store.IDPsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		idp, err := idps.GetIDP(r.Context(), org.ID, pathVar(r, "id"))
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, newIDPResponse(idp))
	}
}

func handleUpdateIDP(orgs store.OrgsStore, idps store.IDPsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		idp, err := idps.GetIDP(r.Context(), org.ID, pathVar(r, "id"))
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		var req IDPRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		req.apply(idp)
		err = idp.Validate()
		if err == nil {
			err = idps.UpdateIDP(r.Context(), idp)
		}
		recordChange(id, org.ID, "idp", idp.ID, audit.OperationUpdate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, newIDPResponse(idp))
	}
}

func handleDeleteIDP(orgs store.OrgsStore, idps store.IDPsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		idpID := pathVar(r, "id")
		err := idps.DeleteIDP(r.Context(), org.ID, idpID)
		recordChange(id, org.ID, "idp", idpID, audit.OperationDelete, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetIDPState(orgs store.OrgsStore, idps store.IDPsStore, state model.State) http.HandlerFunc {
	op := audit.OperationReactivate
	if state == model.StateInactive {
		op = audit.OperationDeactivate
	}

	return func(w http.ResponseWriter, r *http.Request) {
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		idpID := pathVar(r, "id")
		err := idps.SetIDPState(r.Context(), org.ID, idpID, state)
		recordChange(id, org.ID, "idp", idpID, op, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		idp, err := idps.GetIDP(r.Context(), org.ID, idpID)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, newIDPResponse(idp))
	}
}
