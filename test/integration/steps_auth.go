package integration

import (
	"time"

	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/middleware"
)

func (s *StepsContext) iUseAnExpiredToken() error {
	return s.issue(&identity.Identity{Subject: "ops", Roles: []string{identity.RoleIAMAdmin}}, -time.Minute)
}

func (s *StepsContext) iUseATokenSignedWithAnotherKey() error {
	other, err := middleware.NewJWTAuthenticator([]byte("another-signing-key-0123456789abcdef"), "iam-admin")
	if err != nil {
		return err
	}
	token, err := other.Issue(&identity.Identity{Subject: "ops", Roles: []string{identity.RoleIAMAdmin}}, time.Hour)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}
