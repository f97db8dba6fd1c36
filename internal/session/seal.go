// internal/session/seal.go
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	sealKeySize    = 32 // AES-256
	sealIterations = 100000
	sealSalt       = "github-dashboard/session-token"
)

// TokenSealer encrypts access tokens before they are persisted, using
// AES-256-GCM with a key derived from the session secret.
type TokenSealer struct {
	aead cipher.AEAD
}

// NewTokenSealer derives the sealing key from secret.
func NewTokenSealer(secret string) (*TokenSealer, error) {
	if secret == "" {
		return nil, errors.New("session secret is required to seal tokens")
	}
	key := pbkdf2.Key([]byte(secret), []byte(sealSalt), sealIterations, sealKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &TokenSealer{aead: aead}, nil
}

// Seal returns base64(nonce || ciphertext) for token.
func (s *TokenSealer) Seal(token string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. It fails for values sealed under another secret.
func (s *TokenSealer) Open(sealed string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed token: %w", err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", errors.New("sealed token too short")
	}
	token, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed token: %w", err)
	}
	return string(token), nil
}
