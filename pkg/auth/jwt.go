// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/wopibroker/pkg/logger"
)

// Common errors
var (
	ErrNoToken         = errors.New("no token provided")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrMissingSecret   = errors.New("missing signing secret")
)

const signingMethod = "HS256"

// JWTValidatorConfig configures a JWTValidator.
type JWTValidatorConfig struct {
	// Secret is the shared HMAC key.
	Secret []byte

	// Issuer and Audience are checked when set.
	Issuer   string
	Audience string
}

// JWTValidator validates HS256 bearer tokens.
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewJWTValidator creates a validator.
func NewJWTValidator(config JWTValidatorConfig) (*JWTValidator, error) {
	if len(config.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	return &JWTValidator{
		secret:   config.Secret,
		issuer:   config.Issuer,
		audience: config.Audience,
		now:      time.Now,
	}, nil
}

// ValidateToken parses and validates a bearer token.
func (v *JWTValidator) ValidateToken(_ context.Context, tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, ErrInvalidIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return nil, ErrInvalidAudience
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware authenticates requests that carry a bearer token and lets
// requests without one through anonymously. A present but invalid token is
// rejected.
func (v *JWTValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			unauthorized(w, "invalid Authorization header format")
			return
		}

		claims, err := v.ValidateToken(r.Context(), tokenString)
		if err != nil {
			logger.Debugw("bearer token rejected", "path", r.URL.Path, "error", err)
			unauthorized(w, "invalid token")
			return
		}

		identity, err := claimsToIdentity(claims, tokenString)
		if err != nil {
			logger.Debugw("bearer token rejected", "path", r.URL.Path, "error", err)
			unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SubjectFromContext(r.Context()) == "" {
			unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SignToken issues an HS256 token for subject. It is used by the CLI to
// mint caller tokens for the host application.
func SignToken(secret []byte, subject, issuer, audience string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	if audience != "" {
		claims["aud"] = audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="wopibroker"`)
	http.Error(w, msg, http.StatusUnauthorized)
}
