// Package server provides the HTTP server of the IAM administration API.
//
// It uses gorilla/mux for routing and gorilla/handlers for CORS, access
// logging, panic recovery and forwarded headers from trusted proxies.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, db, authenticator)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - DB: Database connection carrying the data cipher
//   - Config: Server configuration, including default policies
//   - Authenticator: bearer token validation
//   - one store per resource, see the store package
//
// # CORS
//
// Browser origins are allowed when they are listed in cors_allowed_origins
// or registered as an allowed origin of an active organization.
package server
