package main

import (
	"fmt"
	"os"

	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/middleware"
)

// authenticator builds the token verifier from IAM_TOKEN_SIGNING_KEY. The key
// is used as raw bytes.
func authenticator(cfg *config.IAMConfig) (*middleware.JWTAuthenticator, error) {
	key, ok := os.LookupEnv("IAM_TOKEN_SIGNING_KEY")
	if !ok || key == "" {
		return nil, fmt.Errorf("IAM_TOKEN_SIGNING_KEY environment variable is required")
	}
	return middleware.NewJWTAuthenticator([]byte(key), cfg.TokenIssuer)
}
