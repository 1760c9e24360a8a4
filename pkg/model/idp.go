package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// StylingType selects how the login page renders an identity provider button.
type StylingType string

const (
	StylingUnspecified StylingType = "unspecified"
	StylingGoogle      StylingType = "google"
)

// IDPConfig is an OIDC identity provider of an organization.
type IDPConfig struct {
	ID          string         `gorm:"column:id;primaryKey;type:uuid"`
	OrgID       string         `gorm:"column:org_id;type:uuid"`
	Name        string         `gorm:"column:name"`
	Issuer      string         `gorm:"column:issuer"`
	ClientID    string         `gorm:"column:client_id"`
	Scopes      pq.StringArray `gorm:"column:scopes;type:text[]"`
	StylingType StylingType    `gorm:"column:styling_type"`
	State       State          `gorm:"column:state"`
	// ClientSecret is sealed into SealedClientSecret on save, bound to ID.
	ClientSecret       string    `gorm:"-"`
	SealedClientSecret []byte    `gorm:"column:client_secret;type:bytea"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (IDPConfig) TableName() string {
	return "idp_configs"
}

func (c *IDPConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &policy.ValidationError{Field: "name", Reason: "is required"}
	}
	if origin.Validate(c.Issuer) != nil {
		return &policy.ValidationError{Field: "issuer", Reason: "must be an absolute http(s) URL"}
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return &policy.ValidationError{Field: "client_id", Reason: "is required"}
	}
	switch c.StylingType {
	case "", StylingUnspecified, StylingGoogle:
	default:
		return &policy.ValidationError{Field: "styling_type", Reason: fmt.Sprintf("unknown styling type %q", c.StylingType)}
	}
	if c.State != "" && !c.State.IsValid() {
		return &policy.ValidationError{Field: "state", Reason: "must be active or inactive"}
	}
	return nil
}

func (c *IDPConfig) BeforeSave(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.State == "" {
		c.State = StateActive
	}
	if c.StylingType == "" {
		c.StylingType = StylingUnspecified
	}
	if c.Scopes == nil {
		c.Scopes = pq.StringArray{"openid"}
	}
	if c.ClientSecret == "" {
		return nil
	}
	box, err := cipherForDB(tx)
	if err != nil {
		return err
	}
	c.SealedClientSecret, err = box.Seal([]byte(c.ID), []byte(c.ClientSecret))
	if err != nil {
		return fmt.Errorf("client secret encryption failed for idp=%q", c.ID)
	}
	return nil
}

func (c *IDPConfig) AfterFind(tx *gorm.DB) error {
	if len(c.SealedClientSecret) == 0 {
		return nil
	}
	box, err := cipherForDB(tx)
	if err != nil {
		return err
	}
	plain, err := box.Open([]byte(c.ID), c.SealedClientSecret)
	if err != nil {
		return fmt.Errorf("client secret decryption failed for idp=%q", c.ID)
	}
	c.ClientSecret = string(plain)
	return nil
}
