package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
)

var tokenRegex = regexp.MustCompile(`^Bearer\s+(\S+)$`)

// MinSigningKeySize is the shortest HMAC key accepted for admin tokens.
const MinSigningKeySize = 32

// Claims are the claims of an admin token.
type Claims struct {
	jwt.RegisteredClaims
	Org   string   `json:"org,omitempty"`
	Roles []string `json:"roles"`
}

// JWTAuthenticator is middleware that validates HS256 admin tokens
type JWTAuthenticator struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(signingKey []byte, issuer string) (*JWTAuthenticator, error) {
	if len(signingKey) < MinSigningKeySize {
		return nil, fmt.Errorf("token signing key must be at least %d bytes", MinSigningKeySize)
	}
	return &JWTAuthenticator{signingKey: signingKey, issuer: issuer, now: time.Now}, nil
}

// Issue signs a token for id valid for ttl.
func (j *JWTAuthenticator) Issue(id *identity.Identity, ttl time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Org:   id.OrgID,
		Roles: id.Roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.signingKey)
}

// Verify parses and validates a token and returns its identity.
func (j *JWTAuthenticator) Verify(tokenString string) (*identity.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return j.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	id := &identity.Identity{
		Subject: claims.Subject,
		OrgID:   claims.Org,
		Roles:   claims.Roles,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Middleware returns an HTTP middleware that validates bearer tokens and
// stores the identity in the request context.
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) == 0 {
			unauthorized(w, r, "Authorization missing")
			return
		}

		tokenMatches := tokenRegex.FindStringSubmatch(authHeader)
		if len(tokenMatches) != 2 {
			unauthorized(w, r, "Malformed authorization header")
			return
		}

		id, err := j.Verify(tokenMatches[1])
		if err != nil {
			reason := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "Token expired"
			}
			unauthorized(w, r, reason)
			return
		}

		id.WithRemoteIP(RemoteIP(r))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// RemoteIP returns the client IP of r. Forwarding headers are applied
// upstream by the trusted-proxy handler.
func RemoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	clientIP := ""
	if ip := RemoteIP(r); ip != nil {
		clientIP = ip.String()
	}
	audit.Log(audit.DeniedEvent{
		ClientIP: clientIP,
		Method:   r.Method,
		Path:     r.URL.Path,
		Reason:   reason,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="iam-admin"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": reason},
	})
}
