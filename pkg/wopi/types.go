// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package wopi defines the token record and related value types that the
// broker, the stores and the reconciler exchange.
package wopi

import (
	"errors"
	"fmt"
	"time"
)

// TokenType identifies which kind of principal a token was issued to.
// The numeric values are persisted and must not change.
type TokenType int

const (
	// TokenTypeUser is issued to an authenticated local user.
	TokenTypeUser TokenType = 0
	// TokenTypeGuest is issued for anonymous or public share access.
	TokenTypeGuest TokenType = 1
	// TokenTypeRemoteUser is a federated token whose initiator was a user on a partner server.
	TokenTypeRemoteUser TokenType = 2
	// TokenTypeRemoteGuest is a federated token whose initiator was a guest on a partner server.
	TokenTypeRemoteGuest TokenType = 3
	// TokenTypeInitiator is handed to a partner server during a federation handshake.
	TokenTypeInitiator TokenType = 4
)

// String returns the lower-case name of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenTypeUser:
		return "user"
	case TokenTypeGuest:
		return "guest"
	case TokenTypeRemoteUser:
		return "remote_user"
	case TokenTypeRemoteGuest:
		return "remote_guest"
	case TokenTypeInitiator:
		return "initiator"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	return t >= TokenTypeUser && t <= TokenTypeInitiator
}

// IsGuest reports whether the token carries a guest display name.
func (t TokenType) IsGuest() bool {
	return t == TokenTypeGuest || t == TokenTypeRemoteGuest
}

// IsRemote reports whether the token was federated from a partner server.
func (t TokenType) IsRemote() bool {
	return t == TokenTypeRemoteUser || t == TokenTypeRemoteGuest
}

// Token is a single-file bearer capability handed to a WOPI client.
// Optional string fields use the empty string for "not set".
type Token struct {
	// Token is the opaque bearer credential and primary key.
	Token string `json:"token"`

	// FileID and Version identify the target file revision. FileID is zero
	// for server-level initiator tokens.
	FileID  int64 `json:"fileId"`
	Version int64 `json:"version"`

	// OwnerUID is the account whose storage is accessed.
	OwnerUID string `json:"ownerUid"`

	// EditorUID is the human user editing; empty for guests.
	EditorUID string `json:"editorUid,omitempty"`

	CanWrite     bool `json:"canWrite"`
	HideDownload bool `json:"hideDownload"`

	// ServerHost is the absolute URL the editor calls back to.
	ServerHost string `json:"serverHost"`

	GuestDisplayName string    `json:"guestDisplayName,omitempty"`
	TokenType        TokenType `json:"tokenType"`

	// ShareToken is the public share this token was derived from.
	ShareToken string `json:"shareToken,omitempty"`

	// TemplateID is set when the token governs a template-to-file conversion.
	TemplateID int64 `json:"templateId,omitempty"`

	Direct bool `json:"direct"`

	// SessionCredential is set when the file's mount needs a secondary
	// session credential for the editing user.
	SessionCredential bool `json:"sessionCredential,omitempty"`

	// RemoteServer and RemoteServerToken identify the partner server once federated.
	RemoteServer      string `json:"remoteServer,omitempty"`
	RemoteServerToken string `json:"remoteServerToken,omitempty"`

	Expiry time.Time `json:"expiry"`
}

// IsExpired reports whether the token is past its expiry at now.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.Expiry)
}

// Clone returns a shallow copy of the token.
func (t *Token) Clone() *Token {
	c := *t
	return &c
}

// ErrInconsistentToken is returned by Validate when the token type does not
// agree with the editor and remote fields.
var ErrInconsistentToken = errors.New("token fields are inconsistent with its type")

// Validate checks that the token type agrees with the presence of the editor
// and remote-server fields.
func (t *Token) Validate() error {
	if t.Token == "" {
		return fmt.Errorf("%w: empty token", ErrInconsistentToken)
	}
	switch t.TokenType {
	case TokenTypeUser:
		if t.EditorUID == "" {
			return fmt.Errorf("%w: user token without editor", ErrInconsistentToken)
		}
	case TokenTypeGuest:
		if t.EditorUID != "" {
			return fmt.Errorf("%w: guest token with editor %q", ErrInconsistentToken, t.EditorUID)
		}
	case TokenTypeRemoteUser:
		if t.RemoteServer == "" {
			return fmt.Errorf("%w: remote user token without remote server", ErrInconsistentToken)
		}
	case TokenTypeRemoteGuest:
		if t.RemoteServer == "" {
			return fmt.Errorf("%w: remote guest token without remote server", ErrInconsistentToken)
		}
		if t.EditorUID != "" {
			return fmt.Errorf("%w: remote guest token with editor %q", ErrInconsistentToken, t.EditorUID)
		}
	case TokenTypeInitiator:
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInconsistentToken, int(t.TokenType))
	}
	return nil
}

// Direct is a redeemed server-to-server direct-open link.
type Direct struct {
	InitiatorHost  string
	InitiatorToken string
}

// TemplateMapping links a freshly created file to the template it should be
// populated from. Mappings are short-lived.
type TemplateMapping struct {
	FileID     int64
	TemplateID int64
	Timestamp  time.Time
}
