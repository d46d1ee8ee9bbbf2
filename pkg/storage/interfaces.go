// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storage defines the persistence interfaces for WOPI token records
// and template mappings, and provides an in-memory implementation.
package storage

import (
	"context"
	"time"

	"github.com/stacklok/wopibroker/pkg/wopi"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=interfaces.go TokenStore,TemplateStore,Store

// TokenStore persists token records keyed by their access token.
type TokenStore interface {
	// Create stores a new token record and returns its identifier.
	Create(ctx context.Context, token *wopi.Token) (string, error)
	// Update replaces an existing token record.
	Update(ctx context.Context, token *wopi.Token) error
	// GetByToken loads a token record. Unknown tokens yield an invalid_token
	// error and expired ones an expired_token error.
	GetByToken(ctx context.Context, token string) (*wopi.Token, error)
	// GetExpired returns up to limit identifiers of expired token records,
	// oldest first.
	GetExpired(ctx context.Context, limit int) ([]string, error)
	// DeleteByIDs removes the given token records and returns how many were deleted.
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
}

// TemplateStore persists short-lived template-to-file mappings.
type TemplateStore interface {
	// PutTemplateMapping stores or replaces the mapping for a file.
	PutTemplateMapping(ctx context.Context, mapping wopi.TemplateMapping) error
	// GetTemplateMapping returns the mapping for a file.
	GetTemplateMapping(ctx context.Context, fileID int64) (wopi.TemplateMapping, error)
	// DeleteTemplateMappingsBefore removes mappings created at or before cutoff.
	DeleteTemplateMappingsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Store combines token and template persistence.
type Store interface {
	TokenStore
	TemplateStore
	// Close releases any resources held by the store.
	Close() error
}
