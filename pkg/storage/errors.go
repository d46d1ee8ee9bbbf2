// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-core/httperr"

	apperrors "github.com/stacklok/wopibroker/pkg/errors"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = httperr.WithCode(
		errors.New("resource not found"),
		http.StatusNotFound,
	)

	// ErrAlreadyExists is returned when a record already exists.
	ErrAlreadyExists = httperr.WithCode(
		errors.New("resource already exists"),
		http.StatusConflict,
	)
)

// UnknownTokenError wraps ErrNotFound in an invalid_token error.
func UnknownTokenError(token string) error {
	return apperrors.NewInvalidTokenError("unknown access token", fmt.Errorf("%s: %w", redact(token), ErrNotFound))
}

// ExpiredTokenError reports that a token record exists but has expired.
func ExpiredTokenError(token string) error {
	return apperrors.NewExpiredTokenError("access token expired", fmt.Errorf("token %s", redact(token)))
}

// redact keeps only a short prefix of a bearer token for error messages.
func redact(token string) string {
	if len(token) <= 6 {
		return token
	}
	return token[:6] + "..."
}
