// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api contains the REST API of the WOPI token broker.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/stacklok/wopibroker/pkg/api/v1"
	"github.com/stacklok/wopibroker/pkg/auth"
	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/discovery"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/metrics"
	"github.com/stacklok/wopibroker/pkg/statecodec"
	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/tokens"
)

const (
	middlewareTimeout = 60 * time.Second
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second

	// MaxRequestBodySize bounds every request body.
	MaxRequestBodySize = 1 << 20
)

// Deps are the services exposed over the API.
type Deps struct {
	Tokens    *tokens.Manager
	Store     storage.TokenStore
	State     *statecodec.Service
	Logins    credentials.LoginStore
	Discovery discovery.Manager
	Sources   tokens.URLSourcer

	// Auth validates caller tokens. When nil every caller is anonymous.
	Auth *auth.JWTValidator

	// Health lists the backends probed by /health.
	Health map[string]v1.Pinger

	// TrustForwardedProto honours X-Forwarded-Proto when deciding whether
	// the passphrase cookie is marked Secure.
	TrustForwardedProto bool
}

func headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

func requestBodySizeLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debugw("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// NewRouter builds the HTTP handler of the broker.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger,
		middleware.Timeout(middlewareTimeout),
		requestBodySizeLimitMiddleware(MaxRequestBodySize),
		headersMiddleware,
	)

	r.Mount("/health", v1.HealthcheckRouter(deps.Health))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Middleware)
		}

		routers := map[string]http.Handler{
			"/tokens":     v1.TokenRouter(deps.Tokens, deps.State, deps.Logins, deps.TrustForwardedProto),
			"/federation": v1.FederationRouter(deps.Tokens, deps.Store),
			"/state":      v1.StateRouter(deps.State),
			"/session":    v1.SessionRouter(deps.State, deps.TrustForwardedProto),
			"/discovery":  v1.DiscoveryRouter(deps.Discovery, deps.Sources),
		}
		for prefix, router := range routers {
			r.Mount(prefix, router)
		}
	})

	return r
}

// Serve starts the server on the given address and serves handler until
// ctx is cancelled. It is assumed that the caller sets up appropriate
// signal handling.
func Serve(ctx context.Context, address string, handler http.Handler) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return serveListener(ctx, listener, handler)
}

func serveListener(ctx context.Context, listener net.Listener, handler http.Handler) error {
	srv := &http.Server{
		BaseContext:       func(net.Listener) context.Context { return ctx },
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Infow("starting HTTP server", "address", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Infow("HTTP server stopped")
	return nil
}
