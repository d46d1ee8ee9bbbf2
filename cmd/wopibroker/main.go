// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the WOPI token broker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stacklok/wopibroker/cmd/wopibroker/app"
	"github.com/stacklok/wopibroker/pkg/logger"
)

func main() {
	// Initialize the logger
	logger.Initialize()

	// Create a context that will be canceled on signal
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.Errorw("command failed", "error", err)
		os.Exit(1)
	}
}
