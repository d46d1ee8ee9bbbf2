// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package auth authenticates callers of the broker API with HS256 bearer
// tokens issued by the host application.
package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityContextKey is the context key of the caller Identity.
type IdentityContextKey struct{}

// WithIdentity stores identity in ctx. A nil identity leaves ctx unchanged.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, IdentityContextKey{}, identity)
}

// IdentityFromContext returns the caller Identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey{}).(*Identity)
	return identity, ok
}

// SubjectFromContext returns the caller uid, or "" for anonymous callers.
func SubjectFromContext(ctx context.Context) string {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity == nil {
		return ""
	}
	return identity.Subject
}

// claimsToIdentity requires a non-empty 'sub' claim.
func claimsToIdentity(claims jwt.MapClaims, token string) (*Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("missing or invalid 'sub' claim")
	}

	identity := &Identity{
		Subject: sub,
		Claims:  claims,
		Token:   token,
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}
