// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"

	"github.com/stacklok/wopibroker/pkg/api"
	v1 "github.com/stacklok/wopibroker/pkg/api/v1"
	"github.com/stacklok/wopibroker/pkg/auth"
	"github.com/stacklok/wopibroker/pkg/cache"
	"github.com/stacklok/wopibroker/pkg/config"
	"github.com/stacklok/wopibroker/pkg/discovery"
	"github.com/stacklok/wopibroker/pkg/hostapi"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/statecodec"
	"github.com/stacklok/wopibroker/pkg/storage/factory"
	"github.com/stacklok/wopibroker/pkg/tokens"
	"github.com/stacklok/wopibroker/pkg/versions"
)

const (
	warmupMaxTries    = 6
	warmupInitialWait = 2 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the token broker",
		Long: `Start the token broker API.

The broker reads the configuration file given by --config, opens the token and
credential stores, warms the editor discovery cache, starts the expiry reconciler
and serves the HTTP API until it receives SIGINT or SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HostAPI.URL == "" {
		return errors.New("host_api.url is required to serve")
	}
	info := versions.GetVersionInfo()
	logger.Infow("starting wopibroker", "version", info.Version, "commit", info.Commit)

	stores, err := factory.NewStores(ctx, cfg.Storage, cfg.ServerSecret)
	if err != nil {
		return err
	}
	defer closeAll(stores)

	discoveryCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeAll(discoveryCache)

	manager, err := newDiscoveryManager(cfg.WOPI, discoveryCache)
	if err != nil {
		return err
	}
	parser := discovery.NewParser(manager)

	host, err := hostapi.NewClient(hostapi.Config{
		URL:           cfg.HostAPI.URL,
		PublicURL:     cfg.HostAPI.PublicURL,
		TokenFile:     cfg.HostAPI.TokenFile,
		Timeout:       cfg.HostAPI.Timeout,
		AllowInsecure: cfg.HostAPI.AllowInsecure,
	})
	if err != nil {
		return err
	}

	codec, err := statecodec.NewCodec([]byte(cfg.ServerSecret))
	if err != nil {
		return err
	}
	state, err := statecodec.NewService(codec, stores.Credentials,
		statecodec.WithWebRoot(cfg.WebRoot),
		statecodec.WithTheme(cfg.UI.Theme),
		statecodec.WithUIDefaults(cfg.UI.Defaults),
	)
	if err != nil {
		return err
	}

	broker, err := tokens.NewManager(tokens.Deps{
		Store:       stores.Tokens,
		Files:       host,
		Shares:      host,
		Permissions: host,
		Events:      host,
		URLs:        host,
		Credentials: state,
		Logins:      host,
		Sources:     parser,
	}, tokens.WithTTL(cfg.TokenTTL))
	if err != nil {
		return err
	}

	validator, err := newValidator(cfg.Auth)
	if err != nil {
		return err
	}

	health := map[string]v1.Pinger{"storage": stores}
	if redisCache, ok := discoveryCache.(*cache.RedisCache); ok {
		health["cache"] = redisCache
	}

	go func() { _ = warmDiscovery(ctx, manager, warmupInitialWait) }()

	sweeper := newReconciler(cfg, stores)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	handler := api.NewRouter(api.Deps{
		Tokens:              broker,
		Store:               stores.Tokens,
		State:               state,
		Logins:              host,
		Discovery:           manager,
		Sources:             parser,
		Auth:                validator,
		Health:              health,
		TrustForwardedProto: cfg.TrustForwardedProto,
	})
	return api.Serve(ctx, cfg.ListenAddress, handler)
}

func newValidator(cfg config.AuthConfig) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		logger.Warnw("auth.jwt_secret is not set, every API caller is anonymous")
		return nil, nil
	}
	validator, err := auth.NewJWTValidator(auth.JWTValidatorConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token validator: %w", err)
	}
	return validator, nil
}

// warmDiscovery fetches the discovery document with exponential backoff.
// A failure is logged and left to the next request.
func warmDiscovery(ctx context.Context, manager discovery.Manager, initialWait time.Duration) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = initialWait

	_, err := backoff.Retry(ctx, func() ([]byte, error) {
		return manager.Get(ctx)
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(warmupMaxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			logger.Warnw("discovery warm-up failed, retrying", "error", err, "retry_in", d)
		}),
	)
	if err != nil {
		logger.Errorw("discovery warm-up gave up", "error", err)
		return err
	}
	logger.Infow("discovery cache warmed")
	return nil
}
