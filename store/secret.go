package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealer encrypts provider credentials before they hit an Area, so a
// copied database file does not leak API keys. ChaCha20-Poly1305 keeps
// this fast on machines without AES acceleration.
type Sealer struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

// NewSealer creates a sealer from a machine secret. The secret is
// hashed with SHA-256 to produce the 32-byte cipher key.
func NewSealer(secret string) (*Sealer, error) {
	hasher := sha256.New()
	hasher.Write([]byte(secret))
	aead, err := chacha20poly1305.New(hasher.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts a credential and returns a base64 string safe to store.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored credential.
func (s *Sealer) Open(stored string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("sealed value too short")
	}
	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plaintext), nil
}

// SealedArea wraps an Area so listed keys are sealed on write and
// opened on read. Non-listed keys pass through untouched.
type SealedArea struct {
	inner  Area
	sealer *Sealer
	keys   map[string]bool
}

// NewSealedArea wraps inner, sealing the named keys.
func NewSealedArea(inner Area, sealer *Sealer, sealedKeys ...string) *SealedArea {
	keys := make(map[string]bool, len(sealedKeys))
	for _, k := range sealedKeys {
		keys[k] = true
	}
	return &SealedArea{inner: inner, sealer: sealer, keys: keys}
}

func (a *SealedArea) Get(key string) (string, bool, error) {
	value, ok, err := a.inner.Get(key)
	if err != nil || !ok {
		return value, ok, err
	}
	if !a.keys[key] {
		return value, true, nil
	}
	opened, err := a.sealer.Open(value)
	if err != nil {
		return "", false, err
	}
	return opened, true, nil
}

func (a *SealedArea) Set(key, value string) error {
	if a.keys[key] {
		sealed, err := a.sealer.Seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return a.inner.Set(key, value)
}

func (a *SealedArea) Delete(key string) error {
	return a.inner.Delete(key)
}

// All returns the snapshot with sealed values opened. A value that no
// longer opens is omitted rather than surfaced as ciphertext.
func (a *SealedArea) All() (map[string]string, error) {
	values, err := a.inner.All()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if a.keys[k] {
			opened, err := a.sealer.Open(v)
			if err != nil {
				continue
			}
			out[k] = opened
			continue
		}
		out[k] = v
	}
	return out, nil
}
