// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package statecodec lets a WOPI client that calls back without the user's
// session recover enough identity to act as that user: a per-browser
// passphrase cookie, a sealed state blob carrying it, and the session
// credential bound to it.
package statecodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stacklok/wopibroker/pkg/crypto"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
)

const (
	// KeyInfo separates the state key from other keys derived from the
	// server secret.
	KeyInfo = "wopibroker.state.v1"

	// Version tags every blob produced by this codec.
	Version = "v1"

	// StateKeyPassphrase holds the passphrase inside a state blob.
	StateKeyPassphrase = "passphrase"

	delimiter = ":"
)

var (
	toURLSafe   = strings.NewReplacer("+", "-", "/", "_", "=", ".")
	fromURLSafe = strings.NewReplacer("-", "+", "_", "/", ".", "=")
)

// Codec seals key/value state into a string that is safe to embed in a URL
// query parameter.
type Codec struct {
	sealer *crypto.Sealer
}

// NewCodec derives the state key from the server secret.
func NewCodec(secret []byte) (*Codec, error) {
	key, err := crypto.DeriveKey(secret, KeyInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state key: %w", err)
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, err
	}
	return &Codec{sealer: sealer}, nil
}

// Encode seals state as "<ciphertext>:<nonce>:v1". The ciphertext and nonce
// are base64 with "+/=" replaced by "-_.".
func (c *Codec) Encode(state map[string]string) (string, error) {
	if state == nil {
		state = map[string]string{}
	}
	plaintext, err := json.Marshal(state)
	if err != nil {
		return "", apperrors.NewInternalError("failed to marshal state", err)
	}
	nonce, ciphertext, err := c.sealer.Seal(plaintext, []byte(Version))
	if err != nil {
		return "", apperrors.NewInternalError("failed to seal state", err)
	}
	return strings.Join([]string{encodePart(ciphertext), encodePart(nonce), Version}, delimiter), nil
}

// Decode reverses Encode. Any malformed, tampered or foreign blob yields a
// decode error.
func (c *Codec) Decode(blob string) (map[string]string, error) {
	parts := strings.Split(blob, delimiter)
	if len(parts) != 3 {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("state has %d parts, expected 3", len(parts)), nil)
	}
	if parts[2] != Version {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("unsupported state version %q", parts[2]), nil)
	}

	ciphertext, err := decodePart(parts[0])
	if err != nil {
		return nil, apperrors.NewDecodeError("malformed state ciphertext", err)
	}
	nonce, err := decodePart(parts[1])
	if err != nil {
		return nil, apperrors.NewDecodeError("malformed state nonce", err)
	}

	plaintext, err := c.sealer.Open(nonce, ciphertext, []byte(Version))
	if err != nil {
		return nil, apperrors.NewDecodeError("state failed authentication", err)
	}

	var state map[string]string
	if err := json.Unmarshal(plaintext, &state); err != nil {
		return nil, apperrors.NewDecodeError("state is not a key/value object", err)
	}
	if state == nil {
		return nil, apperrors.NewDecodeError("state is not a key/value object", nil)
	}
	return state, nil
}

func encodePart(b []byte) string {
	return toURLSafe.Replace(base64.StdEncoding.EncodeToString(b))
}

func decodePart(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(fromURLSafe.Replace(s))
}
