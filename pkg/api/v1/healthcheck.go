// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/wopibroker/pkg/logger"
)

// Pinger is a backend whose reachability gates the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthcheckRouter sets up healthcheck route.
func HealthcheckRouter(backends map[string]Pinger) http.Handler {
	routes := &healthcheckRoutes{backends: backends}
	r := chi.NewRouter()
	r.Get("/", routes.getHealthcheck)
	return r
}

type healthcheckRoutes struct {
	backends map[string]Pinger
}

func (h *healthcheckRoutes) getHealthcheck(w http.ResponseWriter, r *http.Request) {
	for name, backend := range h.backends {
		if err := backend.Ping(r.Context()); err != nil {
			logger.Warnw("health check failed", "backend", name, "error", err)
			http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
