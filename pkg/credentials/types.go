// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package credentials models the revocable session credentials that let a
// WOPI client act as the user who opened a document.
package credentials

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/stacklok/toolhive-core/httperr"
)

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=types.go Provider,LoginStore

// ErrNotFound is returned when no credential matches a passphrase or id.
var ErrNotFound = httperr.WithCode(errors.New("credential not found"), http.StatusNotFound)

// ErrLoginMismatch is returned by Provision when the passphrase is already
// bound to a credential of another login.
var ErrLoginMismatch = errors.New("passphrase is bound to another login")

// Credential is a session credential keyed by a passphrase.
type Credential struct {
	ID string

	// Passphrase is only populated when the credential was loaded or
	// generated by passphrase; listings leave it empty.
	Passphrase string

	// OwnerID is the access token that owns this credential.
	OwnerID string

	LoginName string

	// Secret is the login secret. Like Passphrase it is only populated
	// when the credential was loaded by passphrase.
	Secret string

	Label        string
	LastActivity time.Time
	Expires      time.Time
}

// Provider stores session credentials.
type Provider interface {
	// GetByPassphrase returns the credential for passphrase or ErrNotFound.
	GetByPassphrase(ctx context.Context, passphrase string) (*Credential, error)
	// Generate mints a new credential.
	Generate(ctx context.Context, passphrase, ownerID, loginName, secret, label string) (*Credential, error)
	// Update persists activity, expiry and label changes.
	Update(ctx context.Context, credential *Credential) error
	// ListByOwner returns every credential owned by ownerID.
	ListByOwner(ctx context.Context, ownerID string) ([]*Credential, error)
	// Invalidate revokes a credential.
	Invalidate(ctx context.Context, ownerID, id string) error
}

// Login is the real login of an authenticated caller.
type Login struct {
	UID      string `json:"uid"`
	Password string `json:"password"`
}

// LoginStore returns the login credentials of an authenticated user.
type LoginStore interface {
	LoginCredentials(ctx context.Context, uid string) (*Login, error)
}
