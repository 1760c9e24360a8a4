package model

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// SMTPConfigID is the primary key of the single instance-wide SMTP configuration.
const SMTPConfigID = "default"

type SMTPConfig struct {
	ID            string `gorm:"column:id;primaryKey"`
	SenderAddress string `gorm:"column:sender_address"`
	SenderName    string `gorm:"column:sender_name"`
	TLS           bool   `gorm:"column:tls"`
	Host          string `gorm:"column:host"`
	User          string `gorm:"column:smtp_user"`
	// Password is the plain value. It is sealed into SealedPassword on save and
	// restored after find. An empty Password on save keeps the sealed value.
	Password       string    `gorm:"-"`
	SealedPassword []byte    `gorm:"column:password;type:bytea"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (SMTPConfig) TableName() string {
	return "smtp_configs"
}

func (c *SMTPConfig) HasPassword() bool {
	return c.Password != "" || len(c.SealedPassword) > 0
}

func (c *SMTPConfig) Validate() error {
	if _, err := mail.ParseAddress(c.SenderAddress); err != nil {
		return &policy.ValidationError{Field: "sender_address", Reason: "must be an email address"}
	}
	if strings.TrimSpace(c.Host) == "" {
		return &policy.ValidationError{Field: "host", Reason: "is required"}
	}
	return nil
}

func (c *SMTPConfig) BeforeSave(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = SMTPConfigID
	}
	if c.Password == "" {
		return nil
	}
	box, err := cipherForDB(tx)
	if err != nil {
		return err
	}
	c.SealedPassword, err = box.Seal([]byte(c.ID), []byte(c.Password))
	if err != nil {
		return fmt.Errorf("smtp password encryption failed for id=%q", c.ID)
	}
	return nil
}

func (c *SMTPConfig) AfterFind(tx *gorm.DB) error {
	if len(c.SealedPassword) == 0 {
		return nil
	}
	box, err := cipherForDB(tx)
	if err != nil {
		return err
	}
	plain, err := box.Open([]byte(c.ID), c.SealedPassword)
	if err != nil {
		return fmt.Errorf("smtp password decryption failed for id=%q", c.ID)
	}
	c.Password = string(plain)
	return nil
}
