// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wopi

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// FileRef is a parsed WOPI file identifier.
type FileRef struct {
	FileID     int64
	InstanceID string
	Version    int64
}

// ParseFileRef parses "<fileId>[_<instanceId>[_<version>]]".
func ParseFileRef(ref string) (FileRef, error) {
	parts := strings.SplitN(ref, "_", 3)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return FileRef{}, fmt.Errorf("invalid file id %q", ref)
	}

	out := FileRef{FileID: id}
	if len(parts) > 1 {
		out.InstanceID = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		version, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || version < 0 {
			return FileRef{}, fmt.Errorf("invalid file version in %q", ref)
		}
		out.Version = version
	}
	return out, nil
}

// String formats the reference back into its wire form.
func (r FileRef) String() string {
	if r.InstanceID == "" && r.Version == 0 {
		return strconv.FormatInt(r.FileID, 10)
	}
	return fmt.Sprintf("%d_%s_%d", r.FileID, r.InstanceID, r.Version)
}

const (
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// TokenLength is the number of characters in a generated access token.
	TokenLength = 32
)

// GenerateToken returns a new unguessable access token.
func GenerateToken() (string, error) {
	var b strings.Builder
	b.Grow(TokenLength)
	limit := big.NewInt(int64(len(tokenAlphabet)))
	for range TokenLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}
