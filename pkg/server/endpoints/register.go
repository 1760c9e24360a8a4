package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/iam-admin/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterOriginsEndpoints(srv)
	RegisterOrgsEndpoints(srv)
	RegisterPoliciesEndpoints(srv)
	RegisterSMTPEndpoints(srv)
	RegisterIDPsEndpoints(srv)
	RegisterTextsEndpoints(srv)
}

// protected wraps h in the server's token middleware.
func protected(s *server.Server, h http.HandlerFunc) http.Handler {
	return s.Authenticator.Middleware(h)
}
