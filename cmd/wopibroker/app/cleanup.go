// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/stacklok/wopibroker/pkg/storage/factory"
)

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired tokens once",
		Long: `Run a single reconcile pass: delete stale template mappings and up to one batch of
expired tokens, and invalidate the session credentials bound to them.`,
		RunE: runCleanup,
	}
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stores, err := factory.NewStores(ctx, cfg.Storage, cfg.ServerSecret)
	if err != nil {
		return err
	}
	defer closeAll(stores)

	res, err := newReconciler(cfg, stores).RunOnce(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
