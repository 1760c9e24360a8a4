package endpoints

import (
	"net/http"
	"time"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// SMTPConfigRequest sets the SMTP configuration. An empty password keeps the
// stored one.
type SMTPConfigRequest struct {
	SenderAddress string `json:"sender_address"`
	SenderName    string `json:"sender_name"`
	TLS           bool   `json:"tls"`
	Host          string `json:"host"`
	User          string `json:"user"`
	Password      string `json:"password,omitempty"`
}

// SMTPConfigResponse never includes the password.
type SMTPConfigResponse struct {
	SenderAddress string    `json:"sender_address"`
	SenderName    string    `json:"sender_name"`
	TLS           bool      `json:"tls"`
	Host          string    `json:"host"`
	User          string    `json:"user"`
	HasPassword   bool      `json:"has_password"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newSMTPConfigResponse(cfg *model.SMTPConfig) SMTPConfigResponse {
	return SMTPConfigResponse{
		SenderAddress: cfg.SenderAddress,
		SenderName:    cfg.SenderName,
		TLS:           cfg.TLS,
		Host:          cfg.Host,
		User:          cfg.User,
		HasPassword:   cfg.HasPassword(),
		UpdatedAt:     cfg.UpdatedAt,
	}
}

// RegisterSMTPEndpoints registers the instance SMTP configuration endpoints (iam_admin)
func RegisterSMTPEndpoints(s *server.Server) {
	s.Router.Handle("/smtp", protected(s, handleGetSMTPConfig(s.SMTPStore))).Methods("GET")
	s.Router.Handle("/smtp", protected(s, handleSetSMTPConfig(s.SMTPStore))).Methods("PUT")
}

func handleGetSMTPConfig(smtp store.SMTPStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		cfg, err := smtp.GetSMTPConfig(r.Context())
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, newSMTPConfigResponse(cfg))
	}
}

func handleSetSMTPConfig(smtp store.SMTPStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAdmin(w, r)
		if !ok {
			return
		}

		var req SMTPConfigRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		cfg := &model.SMTPConfig{
			ID:            model.SMTPConfigID,
			SenderAddress: req.SenderAddress,
			SenderName:    req.SenderName,
			TLS:           req.TLS,
			Host:          req.Host,
			User:          req.User,
			Password:      req.Password,
		}
		err := cfg.Validate()
		if err == nil {
			err = smtp.SaveSMTPConfig(r.Context(), cfg)
		}
		if err == nil {
			cfg, err = smtp.GetSMTPConfig(r.Context())
		}
		recordChange(id, "", "smtp", "", audit.OperationUpdate, err)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, newSMTPConfigResponse(cfg))
	}
}
