package endpoints

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/text/language"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/customtext"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// TextResponse is the effective message of a template. Default is true when
// the organization has no override; fields an override leaves empty are
// filled from the default.
type TextResponse struct {
	OrgID    string         `json:"org_id"`
	Key      customtext.Key `json:"key"`
	Language string         `json:"language"`
	Default  bool           `json:"default"`
	customtext.Message
}

// RegisterTextsEndpoints registers the custom message text endpoints
func RegisterTextsEndpoints(s *server.Server) {
	orgs := s.OrgsStore
	texts := s.TextsStore

	s.Router.Handle("/orgs/{org}/texts/{key}/{lang}", protected(s, handleGetText(orgs, texts))).Methods("GET")
	s.Router.Handle("/orgs/{org}/texts/{key}/{lang}", protected(s, handleSetText(orgs, texts))).Methods("PUT")

	// DELETE /orgs/{org}/texts/{key}/{lang} - Reset to the built-in default
	s.Router.Handle("/orgs/{org}/texts/{key}/{lang}", protected(s, handleResetText(orgs, texts))).Methods("DELETE")

	// GET /orgs/{org}/texts/{key}/{lang}/_preview - Render with sample data, overridable by query parameters
	s.Router.Handle("/orgs/{org}/texts/{key}/{lang}/_preview", protected(s, handlePreviewText(orgs, texts))).Methods("GET")
}

// textRef parses the {key} and {lang} route variables.
func textRef(w http.ResponseWriter, r *http.Request) (customtext.Key, language.Tag, bool) {
	key, err := customtext.ParseKey(pathVar(r, "key"))
	if err != nil {
		respondWithMessage(w, http.StatusNotFound, err.Error())
		return "", language.Und, false
	}
	lang, err := customtext.ParseLanguage(pathVar(r, "lang"))
	if err != nil {
		respondWithMessage(w, http.StatusBadRequest, err.Error())
		return "", language.Und, false
	}
	return key, lang, true
}

func effectiveText(ctx context.Context, texts store.TextsStore, orgID string, key customtext.Key, lang language.Tag) (*TextResponse, error) {
	def, err := customtext.Default(key, lang)
	if err != nil {
		return nil, err
	}

	resp := &TextResponse{OrgID: orgID, Key: key, Language: lang.String()}
	override, err := texts.GetCustomText(ctx, orgID, key, lang.String())
	switch {
	case errors.Is(err, store.ErrNotFound):
		resp.Default = true
		resp.Message = def
	case err != nil:
		return nil, err
	default:
		resp.Message = override.Message.Merge(def)
	}
	return resp, nil
}

func handleGetText(orgs store.OrgsStore, texts store.TextsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, lang, ok := textRef(w, r)
		if !ok {
			return
		}
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		resp, err := effectiveText(r.Context(), texts, org.ID, key, lang)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, resp)
	}
}

func handleSetText(orgs store.OrgsStore, texts store.TextsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, lang, ok := textRef(w, r)
		if !ok {
			return
		}
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		var msg customtext.Message
		if err := decodeJSON(r, &msg); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		ref := string(key) + "/" + lang.String()
		var err error
		if verr := msg.Validate(); verr != nil {
			err = &badRequest{err: verr}
		} else {
			err = texts.SetCustomText(r.Context(), &model.CustomText{
				OrgID:    org.ID,
				Key:      key,
				Language: lang.String(),
				Message:  msg,
			})
		}
		recordChange(id, org.ID, "text", ref, audit.OperationUpdate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		resp, err := effectiveText(r.Context(), texts, org.ID, key, lang)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, resp)
	}
}

func handleResetText(orgs store.OrgsStore, texts store.TextsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, lang, ok := textRef(w, r)
		if !ok {
			return
		}
		org, id, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		err := texts.ResetCustomText(r.Context(), org.ID, key, lang.String())
		recordChange(id, org.ID, "text", string(key)+"/"+lang.String(), audit.OperationReset, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handlePreviewText(orgs store.OrgsStore, texts store.TextsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, lang, ok := textRef(w, r)
		if !ok {
			return
		}
		org, _, ok := loadOrg(orgs, w, r)
		if !ok {
			return
		}

		resp, err := effectiveText(r.Context(), texts, org.ID, key, lang)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		data := customtext.Data{"OrgName": org.Name}
		for k, v := range customtext.SampleData {
			if k != "OrgName" {
				data[k] = v
			}
		}
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				data[k] = v[0]
			}
		}

		preview, err := resp.Message.Render(data)
		if err != nil {
			respondWithStoreError(w, r, &badRequest{err: err})
			return
		}
		respondWithJSON(w, http.StatusOK, preview)
	}
}
