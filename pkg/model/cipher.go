package model

import (
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/secretbox"
)

var ErrNoCipher = errors.New("no data key configured for sealed columns")

func cipherForDB(tx *gorm.DB) (secretbox.Cipher, error) {
	if tx.Statement == nil || tx.Statement.Context == nil {
		return nil, ErrNoCipher
	}
	c, ok := secretbox.FromContext(tx.Statement.Context)
	if !ok {
		return nil, ErrNoCipher
	}
	return c, nil
}
