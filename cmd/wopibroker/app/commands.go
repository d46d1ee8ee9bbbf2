// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the wopibroker command-line application.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/wopibroker/pkg/config"
	"github.com/stacklok/wopibroker/pkg/logger"
)

// NewRootCmd creates a new root command for the wopibroker CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "wopibroker",
		DisableAutoGenTag: true,
		Short:             "wopibroker issues WOPI access tokens for a remote document editor",
		Long: `wopibroker sits between a file hosting application and a WOPI document editor.
It issues short-lived, single-file access tokens, federates them with partner servers,
hands the editor an encrypted session state, caches the editor discovery document
and sweeps expired tokens together with the session credentials bound to them.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// Re-initialize so that --debug takes effect.
			logger.Initialize()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		logger.Errorf("Error binding config flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newDiscoveryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// loadConfig reads the configuration named by --config and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper(), viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
