// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/stacklok/wopibroker/pkg/api/errors"
	"github.com/stacklok/wopibroker/pkg/auth"
	"github.com/stacklok/wopibroker/pkg/discovery"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/tokens"
)

// DiscoveryRoutes defines the routes for the editor discovery API.
type DiscoveryRoutes struct {
	manager discovery.Manager
	sources tokens.URLSourcer
}

// DiscoveryRouter creates a new router for the editor discovery API.
// Refetching requires an authenticated caller.
func DiscoveryRouter(manager discovery.Manager, sources tokens.URLSourcer) http.Handler {
	routes := &DiscoveryRoutes{manager: manager, sources: sources}

	r := chi.NewRouter()
	r.Get("/", apierrors.ErrorHandler(routes.getDocument))
	r.Get("/url-source", apierrors.ErrorHandler(routes.getURLSource))
	r.With(auth.RequireIdentity).Post("/refetch", apierrors.ErrorHandler(routes.refetch))
	return r
}

func (d *DiscoveryRoutes) getDocument(w http.ResponseWriter, r *http.Request) error {
	doc, err := d.manager.Get(r.Context())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(doc)
	return err
}

func (d *DiscoveryRoutes) getURLSource(w http.ResponseWriter, r *http.Request) error {
	mime := r.URL.Query().Get("mimetype")
	if mime == "" {
		return apperrors.NewInvalidArgumentError("mimetype is required", nil)
	}
	src, err := d.sources.URLSource(r.Context(), mime)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, src)
	return nil
}

func (d *DiscoveryRoutes) refetch(w http.ResponseWriter, r *http.Request) error {
	if err := d.manager.Refetch(r.Context()); err != nil {
		return apperrors.NewInternalError("failed to refetch discovery", err)
	}
	logger.Infow("discovery cache cleared", "subject", auth.SubjectFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
	return nil
}
