// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package discovery fetches and caches the remote editor's WOPI discovery
// document.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stacklok/wopibroker/pkg/cache"
	apperrors "github.com/stacklok/wopibroker/pkg/errors"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/metrics"
	"github.com/stacklok/wopibroker/pkg/networking"
)

//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks -source=manager.go Manager

const (
	// CacheKey is the cache entry holding the raw discovery document.
	CacheKey = "discovery"

	// CacheTTL is how long a fetched document stays fresh.
	CacheTTL = 3600 * time.Second

	// DiscoveryPath is appended to the editor base URL.
	DiscoveryPath = "/hosting/discovery"

	// DefaultRequestTimeout bounds a discovery fetch.
	DefaultRequestTimeout = 45 * time.Second

	// DefaultColdStartTimeout bounds a fetch while a managed editor is starting.
	DefaultColdStartTimeout = 180 * time.Second

	// maxDocumentSize caps the discovery document body.
	maxDocumentSize = 8 * 1024 * 1024
)

// ErrNoURL is returned when no editor URL is configured.
var ErrNoURL = errors.New("editor URL is not configured")

// Manager returns the discovery document.
type Manager interface {
	// Get returns the cached document, fetching it on a miss.
	Get(ctx context.Context) ([]byte, error)
	// Refetch drops the cached document so the next Get fetches it again.
	Refetch(ctx context.Context) error
}

// Config configures a DefaultManager.
type Config struct {
	// URL is the editor base URL.
	URL string

	RequestTimeout   time.Duration
	ColdStartTimeout time.Duration

	// DisableCertificateVerification skips TLS verification of the editor.
	DisableCertificateVerification bool

	// CABundle is a PEM file of extra trusted roots.
	CABundle string
}

// DefaultManager is the default implementation of Manager. Documents live
// only in the shared cache; there is no per-process copy, so a Refetch on
// one replica is seen by all of them.
type DefaultManager struct {
	url       string
	cache     cache.Cache
	detector  ColdStartDetector
	client    networking.HTTPClient
	coldStart networking.HTTPClient

	// singleFlight collapses concurrent fetches on a cache miss.
	singleFlight singleflight.Group
}

var _ Manager = (*DefaultManager)(nil)

// NewManager creates a discovery manager. A nil detector never reports a
// cold start.
func NewManager(cfg Config, c cache.Cache, detector ColdStartDetector) (*DefaultManager, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	if c == nil {
		return nil, errors.New("cache cannot be nil")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ColdStartTimeout <= 0 {
		cfg.ColdStartTimeout = DefaultColdStartTimeout
	}
	if cfg.DisableCertificateVerification {
		logger.Warnw("TLS certificate verification of the editor is disabled", "url", cfg.URL)
	}

	build := func(timeout time.Duration) (*http.Client, error) {
		// Editors commonly run next to the host on a private network.
		return networking.NewHttpClientBuilder().
			WithTimeout(timeout).
			WithPrivateIPs(true).
			WithHTTP(true).
			WithInsecureSkipVerify(cfg.DisableCertificateVerification).
			WithCABundle(cfg.CABundle).
			Build()
	}
	client, err := build(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build discovery client: %w", err)
	}
	coldStart, err := build(cfg.ColdStartTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build cold start discovery client: %w", err)
	}

	return newManagerWithClients(cfg.URL, c, detector, client, coldStart), nil
}

func newManagerWithClients(
	baseURL string, c cache.Cache, detector ColdStartDetector, client, coldStart networking.HTTPClient,
) *DefaultManager {
	if detector == nil {
		detector = NeverStarting{}
	}
	return &DefaultManager{
		url:       strings.TrimRight(baseURL, "/") + DiscoveryPath,
		cache:     c,
		detector:  detector,
		client:    client,
		coldStart: coldStart,
	}
}

// URL returns the discovery endpoint.
func (m *DefaultManager) URL() string {
	return m.url
}

// Get returns the cached document if fresh, otherwise fetches it, caches it
// for CacheTTL and returns it. Failures are not cached.
//
// Concurrent misses share one fetch. The shared fetch is detached from the
// cancellation of whichever caller started it and is bounded by the client
// timeouts; each caller stops waiting when its own ctx is done.
func (m *DefaultManager) Get(ctx context.Context) ([]byte, error) {
	if doc, ok := m.cached(ctx); ok {
		return doc, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := m.singleFlight.DoChan(CacheKey, func() (any, error) {
		// Another caller may have filled the cache while we waited.
		if doc, ok := m.cached(shared); ok {
			return doc, nil
		}

		doc, err := m.FetchFromRemote(shared)
		if err != nil {
			return nil, err
		}
		if err := m.cache.Set(shared, CacheKey, doc, CacheTTL); err != nil {
			logger.Warnw("failed to cache discovery document", "error", err)
		}
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (m *DefaultManager) cached(ctx context.Context) ([]byte, bool) {
	doc, ok, err := m.cache.Get(ctx, CacheKey)
	if err != nil {
		logger.Warnw("failed to read cached discovery document", "error", err)
		return nil, false
	}
	if !ok || len(doc) == 0 {
		return nil, false
	}
	return doc, true
}

// FetchFromRemote fetches the document without consulting the cache.
func (m *DefaultManager) FetchFromRemote(ctx context.Context) ([]byte, error) {
	client := m.client
	if m.detector.IsStarting(ctx, m.url) {
		logger.Infow("editor is starting, using extended discovery timeout", "url", m.url)
		client = m.coldStart
	}

	start := time.Now()
	res, err := networking.Fetch(ctx, client, m.url, networking.WithMaxResponseSize(maxDocumentSize))
	metrics.ObserveDiscoveryFetch(time.Since(start), err)
	if err != nil {
		logger.Errorw("discovery fetch failed", "url", m.url, "error", err)
		return nil, apperrors.NewDiscoveryFetchError("failed to fetch discovery document from "+m.url, err)
	}
	logger.Debugw("fetched discovery document", "url", m.url, "bytes", len(res.Data))
	return res.Data, nil
}

// Refetch clears the cached document.
func (m *DefaultManager) Refetch(ctx context.Context) error {
	m.singleFlight.Forget(CacheKey)
	if err := m.cache.Delete(ctx, CacheKey); err != nil {
		return fmt.Errorf("failed to clear cached discovery document: %w", err)
	}
	return nil
}
