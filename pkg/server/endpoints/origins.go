package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// OriginCheckResponse is returned by /origins/_check.
type OriginCheckResponse struct {
	Origin string `json:"origin"`
	Valid  bool   `json:"valid"`
}

// OriginRequest adds an allowed origin to an organization.
type OriginRequest struct {
	Origin string `json:"origin"`
}

// OriginsResponse lists the allowed origins of an organization.
type OriginsResponse struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

// RegisterOriginsEndpoints registers the origin check and the allowed
// origins of an organization.
func RegisterOriginsEndpoints(s *server.Server) {
	orgs := s.OrgsStore

	// GET /origins/_check?origin= - Origin validity (no auth required)
	s.Router.HandleFunc("/origins/_check", handleCheckOrigin()).Methods("GET")

	s.Router.Handle("/orgs/{org}/origins", protected(s, handleListOrigins(orgs))).Methods("GET")
	s.Router.Handle("/orgs/{org}/origins", protected(s, handleAddOrigin(orgs))).Methods("POST")

	// DELETE /orgs/{org}/origins?origin= - Remove an allowed origin
	s.Router.Handle("/orgs/{org}/origins", protected(s, handleRemoveOrigin(orgs))).Methods("DELETE")
}

func handleCheckOrigin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o := r.URL.Query().Get("origin")
		if o == "" {
			respondWithMessage(w, http.StatusBadRequest, "origin query parameter is required")
			return
		}
		respondWithJSON(w, http.StatusOK, OriginCheckResponse{Origin: o, Valid: origin.IsValid(o)})
	}
}

func handleListOrigins(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}
		respondWithJSON(w, http.StatusOK, OriginsResponse{AllowedOrigins: org.AllowedOrigins})
	}
}

func handleAddOrigin(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		var req OriginRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		o := origin.Normalize(req.Origin)
		var err error
		if err = origin.Validate(o); err != nil {
			err = &origin.InvalidError{Origin: req.Origin}
		} else {
			var updated []string
			if updated, err = orgs.AddAllowedOrigin(r.Context(), org.ID, o); err == nil {
				org.AllowedOrigins = updated
			}
		}
		recordChange(id, org.ID, "origin", o, audit.OperationCreate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, OriginsResponse{AllowedOrigins: org.AllowedOrigins})
	}
}

func handleRemoveOrigin(orgs store.OrgsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		o := origin.Normalize(r.URL.Query().Get("origin"))
		if o == "" {
			respondWithMessage(w, http.StatusBadRequest, "origin query parameter is required")
			return
		}

		updated, err := orgs.RemoveAllowedOrigin(r.Context(), org.ID, o)
		if err == nil {
			org.AllowedOrigins = updated
		}
		recordChange(id, org.ID, "origin", o, audit.OperationDelete, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, OriginsResponse{AllowedOrigins: org.AllowedOrigins})
	}
}
