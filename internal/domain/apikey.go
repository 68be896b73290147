package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// APIKeyPair is a client credential. The key identifies the caller; the
// secret signs payloads. Keys are soft-deleted by flipping Enabled; hard
// deletion exists for test cleanup only.
type APIKeyPair struct {
	Key       string    `json:"key" db:"key"`
	Secret    string    `json:"secret" db:"secret"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Token returns n hex characters from a cryptographic random source.
func Token(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; there is nothing sensible to fall back to.
		panic(err)
	}
	return hex.EncodeToString(buf)[:n]
}

// NewAPIKeyPair generates a fresh enabled key pair. Tokens carry a suffix
// naming their role so a leaked value is identifiable in logs.
func NewAPIKeyPair() *APIKeyPair {
	return &APIKeyPair{
		Key:       Token(40) + ".key",
		Secret:    Token(40) + ".secret",
		Enabled:   true,
		CreatedAt: time.Now(),
	}
}
