package secretbox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// KeySize is the length of a data key in bytes.
const KeySize = 32

const (
	nonceSize = 12
	version   = byte('1')
)

var ErrMalformed = errors.New("sealed value is malformed")

// Cipher seals and opens values bound to associated data.
type Cipher interface {
	Seal(aad, plain []byte) ([]byte, error)
	Open(aad, sealed []byte) ([]byte, error)
}

// Box is the AES-GCM Cipher.
type Box struct {
	aead cipher.AEAD
}

var _ Cipher = (*Box)(nil)

func New(key []byte) (*Box, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Box{aead: aead}, nil
}

// NewFromBase64 decodes a base64 data key, the form IAM_DATA_KEY carries.
func NewFromBase64(encoded string) (*Box, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("data key is not valid base64: %w", err)
	}
	return New(key)
}

func (b *Box) Seal(aad, plain []byte) ([]byte, error) {
	nonce, err := RandomBytes(nonceSize)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+nonceSize+len(plain)+b.aead.Overhead())
	out = append(out, version)
	out = append(out, nonce...)
	return b.aead.Seal(out, nonce, plain, aad), nil
}

func (b *Box) Open(aad, sealed []byte) ([]byte, error) {
	if len(sealed) < 1+nonceSize+b.aead.Overhead() || sealed[0] != version {
		return nil, ErrMalformed
	}
	nonce := sealed[1 : 1+nonceSize]
	return b.aead.Open(nil, nonce, sealed[1+nonceSize:], aad)
}

// GenerateKey returns a fresh random data key.
func GenerateKey() ([]byte, error) {
	return RandomBytes(KeySize)
}

func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}
	return value, nil
}

type contextKey struct{}

// WithCipher returns a context carrying c. gorm hooks read it back with FromContext.
func WithCipher(ctx context.Context, c Cipher) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the cipher stored by WithCipher, if any.
func FromContext(ctx context.Context) (Cipher, bool) {
	c, ok := ctx.Value(contextKey{}).(Cipher)
	return c, ok
}
