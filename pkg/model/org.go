package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

type Org struct {
	ID             string         `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Name           string         `gorm:"column:name" json:"name"`
	State          State          `gorm:"column:state" json:"state"`
	PrimaryDomain  string         `gorm:"column:primary_domain" json:"primary_domain,omitempty"`
	AllowedOrigins pq.StringArray `gorm:"column:allowed_origins;type:text[]" json:"allowed_origins"`
	CreatedAt      time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Org) TableName() string {
	return "orgs"
}

// Validate checks the name and that every allowed origin is an absolute http(s) URL.
// Names must not parse as a UUID, since an org reference is resolved by id
// whenever it does.
func (o *Org) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return &policy.ValidationError{Field: "name", Reason: "is required"}
	}
	if _, err := uuid.Parse(o.Name); err == nil {
		return &policy.ValidationError{Field: "name", Reason: "must not be a UUID"}
	}
	if o.State != "" && !o.State.IsValid() {
		return &policy.ValidationError{Field: "state", Reason: "must be active or inactive"}
	}
	return origin.ValidateAll(o.AllowedOrigins)
}

func (o *Org) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.State == "" {
		o.State = StateActive
	}
	if o.AllowedOrigins == nil {
		o.AllowedOrigins = pq.StringArray{}
	}
	return nil
}
