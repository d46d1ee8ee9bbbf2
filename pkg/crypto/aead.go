// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package crypto wraps the symmetric primitives used to protect state blobs
// and stored credential secrets: HKDF-SHA256 key derivation and
// XChaCha20-Poly1305 authenticated encryption.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size in bytes of every derived key.
const KeySize = chacha20poly1305.KeySize

// NonceSize is the size in bytes of a nonce produced by Seal.
const NonceSize = chacha20poly1305.NonceSizeX

// ErrOpen is returned when a ciphertext fails authentication.
var ErrOpen = errors.New("ciphertext authentication failed")

// DeriveKey derives a KeySize key from secret, separated by info.
// Changing info invalidates everything sealed under the derived key.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("secret cannot be empty")
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

// Sealer encrypts and authenticates payloads under a single key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a Sealer from a KeySize key.
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce. aad is authenticated
// but not encrypted.
func (s *Sealer) Seal(plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generating random nonce: %w", err)
	}
	return nonce, s.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts ciphertext sealed with the same key, nonce and aad.
func (s *Sealer) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce is %d bytes, expected %d", ErrOpen, len(nonce), NonceSize)
	}
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return plaintext, nil
}

// SealBlob seals plaintext and returns nonce||ciphertext.
func (s *Sealer) SealBlob(plaintext, aad []byte) ([]byte, error) {
	nonce, ciphertext, err := s.Seal(plaintext, aad)
	if err != nil {
		return nil, err
	}
	return append(nonce, ciphertext...), nil
}

// OpenBlob opens a nonce||ciphertext blob produced by SealBlob.
func (s *Sealer) OpenBlob(blob, aad []byte) ([]byte, error) {
	if len(blob) < NonceSize+s.aead.Overhead() {
		return nil, fmt.Errorf("%w: blob is %d bytes, minimum is %d", ErrOpen, len(blob), NonceSize+s.aead.Overhead())
	}
	return s.Open(blob[:NonceSize], blob[NonceSize:], aad)
}

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("reading random bytes: %w", err)
	}
	return b, nil
}
