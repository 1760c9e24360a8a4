package model

import (
	"time"

	"github.com/doodlesbykumbi/iam-admin/pkg/customtext"
)

// CustomText is an organization's override of one message template in one language.
type CustomText struct {
	OrgID              string         `gorm:"column:org_id;primaryKey;type:uuid"`
	Key                customtext.Key `gorm:"column:template_key;primaryKey"`
	Language           string         `gorm:"column:language;primaryKey"`
	customtext.Message `gorm:"embedded"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (CustomText) TableName() string {
	return "custom_texts"
}
