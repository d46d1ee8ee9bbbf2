// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"github.com/spf13/cobra"

	"github.com/stacklok/wopibroker/pkg/discovery"
	"github.com/stacklok/wopibroker/pkg/logger"
)

func newDiscoveryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discovery",
		Short: "Inspect the editor discovery cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "fetch",
		Short: "Print the discovery document, fetching it on a cache miss",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDiscoveryManager(cmd, func(m discovery.Manager) error {
				doc, err := m.Get(cmd.Context())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "refetch",
		Short: "Clear the cached discovery document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDiscoveryManager(cmd, func(m discovery.Manager) error {
				if err := m.Refetch(cmd.Context()); err != nil {
					return err
				}
				logger.Infow("discovery cache cleared")
				return nil
			})
		},
	})
	return cmd
}

func withDiscoveryManager(cmd *cobra.Command, fn func(discovery.Manager) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := newCache(cmd.Context(), cfg.Cache)
	if err != nil {
		return err
	}
	defer closeAll(c)

	m, err := newDiscoveryManager(cfg.WOPI, c)
	if err != nil {
		return err
	}
	return fn(m)
}
