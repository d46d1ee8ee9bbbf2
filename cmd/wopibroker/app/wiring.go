// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/wopibroker/pkg/cache"
	"github.com/stacklok/wopibroker/pkg/config"
	"github.com/stacklok/wopibroker/pkg/discovery"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/reconciler"
	"github.com/stacklok/wopibroker/pkg/storage/factory"
)

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Type {
	case config.CacheTypeRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:          cfg.Redis.Addr,
			MasterName:    cfg.Redis.MasterName,
			SentinelAddrs: cfg.Redis.SentinelAddrs,
			Username:      cfg.Redis.Username,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			KeyPrefix:     cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		logger.Infow("using redis discovery cache", "addr", cfg.Redis.Addr, "sentinels", len(cfg.Redis.SentinelAddrs))
		return c, nil
	case config.CacheTypeMemory, "":
		logger.Infow("using in-memory discovery cache")
		return cache.NewMemoryCache(nil), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

func newDiscoveryManager(cfg config.WOPIConfig, c cache.Cache) (*discovery.DefaultManager, error) {
	var detector discovery.ColdStartDetector
	if cfg.ProxyStatusURL != "" {
		d, err := discovery.NewProxyStatusDetector(cfg.ProxyStatusURL, cfg.DisableCertificateVerification)
		if err != nil {
			return nil, fmt.Errorf("failed to create cold start detector: %w", err)
		}
		detector = d
	}
	return discovery.NewManager(discovery.Config{
		URL:                            cfg.URL,
		RequestTimeout:                 cfg.RequestTimeout,
		ColdStartTimeout:               cfg.ColdStartTimeout,
		DisableCertificateVerification: cfg.DisableCertificateVerification,
		CABundle:                       cfg.CABundle,
	}, c, detector)
}

func newReconciler(cfg *config.Config, stores *factory.Stores) *reconciler.Reconciler {
	return reconciler.New(stores.Tokens, stores.Credentials, reconciler.WithInterval(cfg.Cleanup.Interval))
}

func closeAll(closers ...interface{ Close() error }) {
	var errs []error
	for _, c := range closers {
		if c == nil {
			continue
		}
		errs = append(errs, c.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warnw("failed to release resources", "error", err)
	}
}
