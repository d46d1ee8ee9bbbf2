// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wopi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user", TokenTypeUser.String())
	assert.Equal(t, "guest", TokenTypeGuest.String())
	assert.Equal(t, "remote_user", TokenTypeRemoteUser.String())
	assert.Equal(t, "remote_guest", TokenTypeRemoteGuest.String())
	assert.Equal(t, "initiator", TokenTypeInitiator.String())
	assert.Equal(t, "unknown(9)", TokenType(9).String())
	assert.False(t, TokenType(9).Valid())
}

func TestTokenTypePredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, TokenTypeGuest.IsGuest())
	assert.True(t, TokenTypeRemoteGuest.IsGuest())
	assert.False(t, TokenTypeUser.IsGuest())
	assert.False(t, TokenTypeRemoteUser.IsGuest())

	assert.True(t, TokenTypeRemoteUser.IsRemote())
	assert.True(t, TokenTypeRemoteGuest.IsRemote())
	assert.False(t, TokenTypeInitiator.IsRemote())
}

func TestTokenValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   Token
		wantErr bool
	}{
		{"user with editor", Token{Token: "t", TokenType: TokenTypeUser, EditorUID: "alice"}, false},
		{"user without editor", Token{Token: "t", TokenType: TokenTypeUser}, true},
		{"guest", Token{Token: "t", TokenType: TokenTypeGuest}, false},
		{"guest with editor", Token{Token: "t", TokenType: TokenTypeGuest, EditorUID: "alice"}, true},
		{"remote user", Token{Token: "t", TokenType: TokenTypeRemoteUser, EditorUID: "bob", RemoteServer: "https://b"}, false},
		{"remote user without server", Token{Token: "t", TokenType: TokenTypeRemoteUser}, true},
		{"remote guest", Token{Token: "t", TokenType: TokenTypeRemoteGuest, RemoteServer: "https://b"}, false},
		{"remote guest with editor", Token{Token: "t", TokenType: TokenTypeRemoteGuest, RemoteServer: "https://b", EditorUID: "x"}, true},
		{"initiator", Token{Token: "t", TokenType: TokenTypeInitiator}, false},
		{"unknown type", Token{Token: "t", TokenType: 7}, true},
		{"empty token", Token{TokenType: TokenTypeGuest}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.token.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInconsistentToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenIsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := &Token{Expiry: now}

	assert.True(t, tok.IsExpired(now))
	assert.True(t, tok.IsExpired(now.Add(time.Second)))
	assert.False(t, tok.IsExpired(now.Add(-time.Second)))
}

func TestParseFileRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    FileRef
		wantErr bool
	}{
		{in: "42", want: FileRef{FileID: 42}},
		{in: "42_ocabc123", want: FileRef{FileID: 42, InstanceID: "ocabc123"}},
		{in: "42_ocabc123_7", want: FileRef{FileID: 42, InstanceID: "ocabc123", Version: 7}},
		{in: "42_ocabc123_", want: FileRef{FileID: 42, InstanceID: "ocabc123"}},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "42_oc_x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFileRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "42", FileRef{FileID: 42}.String())
	assert.Equal(t, "42_oc1_3", FileRef{FileID: 42, InstanceID: "oc1", Version: 3}.String())
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		tok, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, tok, TokenLength)
		assert.Regexp(t, `^[A-Za-z0-9]+$`, tok)
		_, dup := seen[tok]
		assert.False(t, dup, "generated duplicate token")
		seen[tok] = struct{}{}
	}
}
