// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors provides HTTP error handling utilities for the API.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/logger"
)

// HandlerWithError is an HTTP handler that can return an error.
// This signature allows handlers to return errors instead of manually
// writing error responses, enabling centralized error handling.
type HandlerWithError func(http.ResponseWriter, *http.Request) error

// Response is the JSON body written for a failed request.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandler wraps a HandlerWithError and converts returned errors
// into appropriate HTTP responses.
//
// The decorator:
//   - Returns early if no error is returned (handler already wrote response)
//   - Maps the error to a status code using apperrors.HTTPStatus
//   - For 5xx errors: logs full error details, returns generic message to client
//   - For 4xx errors: returns error message to client
//
// Usage:
//
//	r.Post("/", apierrors.ErrorHandler(routes.issueToken))
func ErrorHandler(fn HandlerWithError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		Write(w, r, err)
	}
}

// Write writes err as a JSON error response.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.HTTPStatus(err)
	resp := Response{Error: errorType(err), Message: err.Error()}

	if code >= http.StatusInternalServerError {
		logger.Errorw("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Message = http.StatusText(code)
	} else {
		logger.Debugw("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func errorType(err error) string {
	var e *apperrors.Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return apperrors.ErrInternal
}
