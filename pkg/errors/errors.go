// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the typed error taxonomy shared by the token broker,
// the state codec, the discovery cache and the reconciler.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-core/httperr"
)

// Error types
const (
	// ErrInvalidArgument is returned when an invalid argument is provided
	ErrInvalidArgument = "invalid_argument"

	// ErrPermissionDenied is returned for unreadable files, missing write or
	// download entitlement and owners/editors that may not use the service
	ErrPermissionDenied = "permission_denied"

	// ErrNotFound is returned when a file, share or token does not exist
	ErrNotFound = "not_found"

	// ErrInvalidToken is returned when an access token is unknown
	ErrInvalidToken = "invalid_token"

	// ErrExpiredToken is returned when an access token is past its expiry
	ErrExpiredToken = "expired_token"

	// ErrCredentialProvision is returned when a secondary session credential
	// cannot be minted
	ErrCredentialProvision = "credential_provision"

	// ErrDecode is returned when a state blob cannot be decoded
	ErrDecode = "decode"

	// ErrDiscoveryFetch is returned when the discovery document cannot be fetched
	ErrDiscoveryFetch = "discovery_fetch"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewPermissionDeniedError creates a new permission denied error
func NewPermissionDeniedError(message string, cause error) *Error {
	return NewError(ErrPermissionDenied, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *Error {
	return NewError(ErrNotFound, message, cause)
}

// NewInvalidTokenError creates a new invalid token error
func NewInvalidTokenError(message string, cause error) *Error {
	return NewError(ErrInvalidToken, message, cause)
}

// NewExpiredTokenError creates a new expired token error
func NewExpiredTokenError(message string, cause error) *Error {
	return NewError(ErrExpiredToken, message, cause)
}

// NewCredentialProvisionError creates a new credential provisioning error
func NewCredentialProvisionError(message string, cause error) *Error {
	return NewError(ErrCredentialProvision, message, cause)
}

// NewDecodeError creates a new decode error
func NewDecodeError(message string, cause error) *Error {
	return NewError(ErrDecode, message, cause)
}

// NewDiscoveryFetchError creates a new discovery fetch error
func NewDiscoveryFetchError(message string, cause error) *Error {
	return NewError(ErrDiscoveryFetch, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// isType reports whether err, or any error it wraps, is an *Error of the given type.
func isType(err error, errorType string) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == errorType
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return isType(err, ErrInvalidArgument)
}

// IsPermissionDenied checks if the error is a permission denied error
func IsPermissionDenied(err error) bool {
	return isType(err, ErrPermissionDenied)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrNotFound)
}

// IsInvalidToken checks if the error is an invalid token error
func IsInvalidToken(err error) bool {
	return isType(err, ErrInvalidToken)
}

// IsExpiredToken checks if the error is an expired token error
func IsExpiredToken(err error) bool {
	return isType(err, ErrExpiredToken)
}

// IsCredentialProvision checks if the error is a credential provisioning error
func IsCredentialProvision(err error) bool {
	return isType(err, ErrCredentialProvision)
}

// IsDecode checks if the error is a decode error
func IsDecode(err error) bool {
	return isType(err, ErrDecode)
}

// IsDiscoveryFetch checks if the error is a discovery fetch error
func IsDiscoveryFetch(err error) bool {
	return isType(err, ErrDiscoveryFetch)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrInternal)
}

// HTTPStatus maps an error to the HTTP status code the API returns for it.
// Errors outside the taxonomy use the code attached with httperr, or 500.
func HTTPStatus(err error) int {
	var e *Error
	if !stderrors.As(err, &e) {
		return httperr.Code(err)
	}
	switch e.Type {
	case ErrInvalidArgument, ErrDecode:
		return http.StatusBadRequest
	case ErrPermissionDenied:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidToken, ErrExpiredToken:
		return http.StatusUnauthorized
	case ErrDiscoveryFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
