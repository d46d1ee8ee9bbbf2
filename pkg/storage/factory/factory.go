// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package factory builds the configured token store and credential provider.
package factory

import (
	"context"
	"fmt"

	"github.com/stacklok/wopibroker/pkg/config"
	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/crypto"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/storage"
	"github.com/stacklok/wopibroker/pkg/storage/sqlite"
)

// CredentialKeyInfo is the HKDF info string for the credential sealing key.
const CredentialKeyInfo = "wopibroker.credentials.v1"

// Stores bundles the token store with the matching credential provider.
type Stores struct {
	Tokens      storage.Store
	Credentials credentials.Provider

	db *sqlite.DB
}

// Ping checks the database behind the stores. The in-memory backend is
// always reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Ping(ctx)
}

// Close releases the stores.
func (s *Stores) Close() error {
	return s.Tokens.Close()
}

// NewStores selects the storage backend from cfg.
func NewStores(ctx context.Context, cfg config.StorageConfig, serverSecret string) (*Stores, error) {
	switch cfg.Type {
	case config.StorageTypeMemory, "":
		logger.Infow("using in-memory token storage")
		return &Stores{
			Tokens:      storage.NewMemoryStore(),
			Credentials: credentials.NewMemoryProvider(),
		}, nil

	case config.StorageTypeSQLite:
		key, err := crypto.DeriveKey([]byte(serverSecret), CredentialKeyInfo)
		if err != nil {
			return nil, fmt.Errorf("deriving credential key: %w", err)
		}
		sealer, err := crypto.NewSealer(key)
		if err != nil {
			return nil, fmt.Errorf("creating credential sealer: %w", err)
		}

		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		logger.Infow("using sqlite token storage", "path", cfg.Path)
		return &Stores{
			Tokens:      sqlite.NewStore(db),
			Credentials: sqlite.NewCredentialStore(db, sealer),
			db:          db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
