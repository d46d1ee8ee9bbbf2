// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/wopibroker/pkg/config"
	"github.com/stacklok/wopibroker/pkg/logger"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration that results from defaults, the --config file and
WOPIBROKER_* environment variables. Secrets are redacted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper(), viper.GetString("config"))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				logger.Warnw("configuration is not valid", "error", err)
			}

			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
