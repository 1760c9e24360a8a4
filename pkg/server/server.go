package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/logging"
	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/middleware"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/iam-admin/pkg/server/store/gorm"
)

type Server struct {
	Router        *mux.Router
	DB            *gorm.DB
	Config        *config.IAMConfig
	Authenticator *middleware.JWTAuthenticator

	HealthStore   store.HealthStore
	OrgsStore     store.OrgsStore
	PoliciesStore store.PoliciesStore
	SMTPStore     store.SMTPStore
	IDPsStore     store.IDPsStore
	TextsStore    store.TextsStore

	srv *http.Server
}

// NewServer wires the GORM stores on db. db must carry the data cipher in
// its context for SMTP passwords and IDP client secrets.
func NewServer(
	cfg *config.IAMConfig,
	db *gorm.DB,
	authenticator *middleware.JWTAuthenticator,
) *Server {
	s := &Server{
		Router:        mux.NewRouter().UseEncodedPath(),
		DB:            db,
		Config:        cfg,
		Authenticator: authenticator,
		HealthStore:   gormstore.NewHealthStore(db),
		OrgsStore:     newCachedOrgs(gormstore.NewOrgsStore(db), OriginsCacheTTL),
		PoliciesStore: gormstore.NewPoliciesStore(db),
		SMTPStore:     gormstore.NewSMTPStore(db),
		IDPsStore:     gormstore.NewIDPsStore(db),
		TextsStore:    gormstore.NewTextsStore(db),
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router wrapped in CORS, panic recovery, access
// logging and trusted proxy handling, outermost last.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	h = handlers.CORS(
		handlers.AllowedOriginValidator(s.IsAllowedOrigin),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.MaxAge(600),
	)(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logrus.WithField("component", "recovery")),
		handlers.PrintRecoveryStack(logrus.IsLevelEnabled(logrus.DebugLevel)),
	)(h)
	h = handlers.CombinedLoggingHandler(logging.AccessLog(), h)
	return s.trustedProxyHeaders(h)
}

// IsAllowedOrigin reports whether a browser origin may call the API: it is
// configured instance-wide or registered by an active organization.
func (s *Server) IsAllowedOrigin(o string) bool {
	if !origin.IsValid(o) {
		return false
	}
	if origin.Contains(s.Config.CORSAllowedOrigins, o) {
		return true
	}
	if s.OrgsStore == nil {
		return false
	}
	origins, err := s.OrgsStore.AllowedOrigins(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Failed to load allowed origins")
		return false
	}
	return origin.Contains(origins, o)
}

// trustedProxyHeaders applies X-Forwarded-For and friends only to requests
// coming from a configured proxy.
func (s *Server) trustedProxyHeaders(next http.Handler) http.Handler {
	proxied := handlers.ProxyHeaders(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if s.Config.IsTrustedProxy(host) {
			proxied.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Start() error {
	logrus.WithField("addr", s.srv.Addr).Info("Starting IAM admin server")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
