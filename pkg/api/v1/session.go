// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/stacklok/wopibroker/pkg/api/errors"
	"github.com/stacklok/wopibroker/pkg/statecodec"
)

// SessionRoutes defines the routes that read editor state blobs and end
// browser sessions.
type SessionRoutes struct {
	state *statecodec.Service

	trustForwardedProto bool
}

// StateRouter creates a router that decodes state blobs.
func StateRouter(state *statecodec.Service) http.Handler {
	routes := &SessionRoutes{state: state}

	r := chi.NewRouter()
	r.Post("/decode", apierrors.ErrorHandler(routes.decodeState))
	return r
}

// SessionRouter creates a router for browser session management.
func SessionRouter(state *statecodec.Service, trustForwardedProto bool) http.Handler {
	routes := &SessionRoutes{state: state, trustForwardedProto: trustForwardedProto}

	r := chi.NewRouter()
	r.Post("/logout", apierrors.ErrorHandler(routes.logout))
	return r
}

type stateRequest struct {
	State string `json:"state"`
}

type stateResponse struct {
	State map[string]string `json:"state"`
}

func (s *SessionRoutes) decodeState(w http.ResponseWriter, r *http.Request) error {
	var req stateRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	state, err := s.state.Decode(req.State)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, stateResponse{State: state})
	return nil
}

func (s *SessionRoutes) logout(w http.ResponseWriter, r *http.Request) error {
	transport := statecodec.NewHTTPTransport(w, r)
	transport.TrustForwardedProto = s.trustForwardedProto
	if err := s.state.Logout(r.Context(), transport); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
