package endpoints

import (
	"context"
	"errors"
	"net/http"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// PolicyGridResponse holds the effective policy of every kind for an organization.
type PolicyGridResponse struct {
	Policies []*policy.Policy `json:"policies"`
}

// PasswordCheckRequest is the body of a complexity check.
type PasswordCheckRequest struct {
	Password string `json:"password"`
}

// PasswordCheckResponse reports the complexity rules a password violates.
type PasswordCheckResponse struct {
	Valid      bool               `json:"valid"`
	Violations []policy.Violation `json:"violations"`
	Default    bool               `json:"default"`
}

// RegisterPoliciesEndpoints registers the password policy endpoints
func RegisterPoliciesEndpoints(s *server.Server) {
	orgs := s.OrgsStore
	policies := s.PoliciesStore
	defaults := s.Config.DefaultPolicies

	// GET /orgs/{org}/policies - Policy grid, instance defaults flagged
	s.Router.Handle("/orgs/{org}/policies", protected(s, handlePolicyGrid(orgs, policies, defaults))).Methods("GET")

	// POST /orgs/{org}/policies/complexity/_check - Check a password against the effective policy
	s.Router.Handle("/orgs/{org}/policies/complexity/_check", protected(s, handleCheckPassword(orgs, policies, defaults))).Methods("POST")

	// GET /orgs/{org}/policies/{kind} - Effective policy of one kind
	s.Router.Handle("/orgs/{org}/policies/{kind}", protected(s, handleGetPolicy(orgs, policies, defaults))).Methods("GET")

	// POST /orgs/{org}/policies/{kind} - Create an org-specific policy (409 if it exists)
	s.Router.Handle("/orgs/{org}/policies/{kind}", protected(s, handleCreatePolicy(orgs, policies))).Methods("POST")

	// PUT /orgs/{org}/policies/{kind} - Modify the org-specific policy (404 if missing)
	s.Router.Handle("/orgs/{org}/policies/{kind}", protected(s, handleUpdatePolicy(orgs, policies))).Methods("PUT")

	// DELETE /orgs/{org}/policies/{kind} - Fall back to the instance default (404 if missing)
	s.Router.Handle("/orgs/{org}/policies/{kind}", protected(s, handleDeletePolicy(orgs, policies))).Methods("DELETE")
}

// effectivePolicy returns the org's own policy, or the instance default
// flagged with Default when it has none.
func effectivePolicy(ctx context.Context, policies store.PoliciesStore, defaults policy.Defaults, orgID string, kind policy.Kind) (*policy.Policy, error) {
	p, err := policies.GetPolicy(ctx, orgID, kind)
	if errors.Is(err, store.ErrNotFound) {
		return defaults.For(orgID, kind), nil
	}
	return p, err
}

// policyKind parses the {kind} route variable, responding 404 for unknown kinds.
func policyKind(w http.ResponseWriter, r *http.Request) (policy.Kind, bool) {
	kind, err := policy.KindString(pathVar(r, "kind"))
	if err != nil {
		respondWithMessage(w, http.StatusNotFound, "unknown policy kind "+pathVar(r, "kind"))
		return 0, false
	}
	return kind, true
}

// decodePolicy reads the policy section of kind from the request body.
func decodePolicy(r *http.Request, orgID string, kind policy.Kind) (*policy.Policy, error) {
	p := &policy.Policy{OrgID: orgID, Kind: kind}
	var section interface{}
	switch kind {
	case policy.KindComplexity:
		p.Complexity = &policy.Complexity{}
		section = p.Complexity
	case policy.KindAge:
		p.Age = &policy.Age{}
		section = p.Age
	case policy.KindLockout:
		p.Lockout = &policy.Lockout{}
		section = p.Lockout
	}
	if err := decodeJSON(r, section); err != nil {
		return nil, err
	}
	return p, p.Validate()
}

func handlePolicyGrid(orgs store.OrgsStore, policies store.PoliciesStore, defaults policy.Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		grid := PolicyGridResponse{}
		for _, kind := range policy.KindValues() {
			p, err := effectivePolicy(r.Context(), policies, defaults, org.ID, kind)
			if err != nil {
				respondWithStoreError(w, r, err)
				return
			}
			grid.Policies = append(grid.Policies, p)
		}
		respondWithJSON(w, http.StatusOK, grid)
	}
}

func handleGetPolicy(orgs store.OrgsStore, policies store.PoliciesStore, defaults policy.Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := policyKind(w, r)
		if !ok {
			return
		}
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		p, err := effectivePolicy(r.Context(), policies, defaults, org.ID, kind)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, p)
	}
}

func handleCreatePolicy(orgs store.OrgsStore, policies store.PoliciesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := policyKind(w, r)
		if !ok {
			return
		}
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		p, err := decodePolicy(r, org.ID, kind)
		if err == nil {
			p, err = policies.CreatePolicy(r.Context(), p)
		}
		recordChange(id, org.ID, "policy", kind.String(), audit.OperationCreate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, p)
	}
}

func handleUpdatePolicy(orgs store.OrgsStore, policies store.PoliciesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := policyKind(w, r)
		if !ok {
			return
		}
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		p, err := decodePolicy(r, org.ID, kind)
		if err == nil {
			p, err = policies.UpdatePolicy(r.Context(), p)
		}
		recordChange(id, org.ID, "policy", kind.String(), audit.OperationUpdate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, p)
	}
}

func handleDeletePolicy(orgs store.OrgsStore, policies store.PoliciesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := policyKind(w, r)
		if !ok {
			return
		}
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		err := policies.DeletePolicy(r.Context(), org.ID, kind)
		recordChange(id, org.ID, "policy", kind.String(), audit.OperationDelete, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCheckPassword(orgs store.OrgsStore, policies store.PoliciesStore, defaults policy.Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		var req PasswordCheckRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		p, err := effectivePolicy(r.Context(), policies, defaults, org.ID, policy.KindComplexity)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		violations := p.Complexity.CheckPassword(req.Password)
		respondWithJSON(w, http.StatusOK, PasswordCheckResponse{
			Valid:      len(violations) == 0,
			Violations: violations,
			Default:    p.Default,
		})
	}
}
