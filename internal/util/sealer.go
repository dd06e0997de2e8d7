package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const sealerInfo = "connectgate provider token sealing v1"

// ErrSealedValueInvalid is returned when a sealed value cannot be decoded or authenticated
var ErrSealedValueInvalid = errors.New("sealed value is invalid")

// TokenSealer encrypts provider tokens at rest with AES-256-GCM.
// The AES key is derived from the configured secret with HKDF-SHA256.
type TokenSealer struct {
	aead cipher.AEAD
}

// NewTokenSealer derives the sealing key from secret.
func NewTokenSealer(secret string) (*TokenSealer, error) {
	if secret == "" {
		return nil, errors.New("token sealing secret is empty")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(sealerInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &TokenSealer{aead: aead}, nil
}

// Seal encrypts value and binds it to binding (authenticated, not encrypted),
// so a sealed token copied to another record fails to open.
// An empty value seals to an empty string.
func (s *TokenSealer) Seal(value, binding string) (string, error) {
	if value == "" {
		return "", nil
	}

	// AES-GCM requires a unique nonce per encryption under the same key
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nil, nonce, []byte(value), []byte(binding))
	// Persist as nonce || ciphertext
	payload := append(nonce, ciphertext...)
	return base64.RawStdEncoding.EncodeToString(payload), nil
}

// Open decrypts a value produced by Seal with the same binding.
func (s *TokenSealer) Open(sealed, binding string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	payload, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedValueInvalid, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(payload) < nonceSize {
		return "", fmt.Errorf("%w: too short", ErrSealedValueInvalid)
	}
	plaintext, err := s.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], []byte(binding))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedValueInvalid, err)
	}
	return string(plaintext), nil
}
