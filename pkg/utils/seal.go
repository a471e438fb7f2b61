package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrSealKeySize = errors.New("seal key must be 32 bytes (64 hex chars)")

// Sealer encrypts short secrets (the upstream portal token) before they are
// written to the session store, so a leaked Redis dump does not leak tokens.
type Sealer struct {
	key []byte
}

// NewSealer creates a Sealer from a hex-encoded 32-byte key.
func NewSealer(keyHex string) (*Sealer, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decode seal key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrSealKeySize
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext with ChaCha20-Poly1305 and returns
// base64(nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return "", fmt.Errorf("new aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return "", fmt.Errorf("new aead: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("sealed value too short")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plaintext), nil
}
