// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package v1 contains the version 1 routes of the broker API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-core/httperr"

	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnw("failed to encode response", "error", err)
	}
}

// decodeJSON decodes the request body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return httperr.WithCode(fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		}
		return apperrors.NewInvalidArgumentError("malformed request body", err)
	}
	return nil
}
