// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide structured logger of the broker.
// It wraps toolhive-core/logging; components log through the w-suffixed
// helpers with alternating key/value pairs.
package logger

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-core/env"
	"github.com/stacklok/toolhive-core/logging"
)

// unstructuredLogsEnv selects text output unless it parses as false.
const unstructuredLogsEnv = "UNSTRUCTURED_LOGS"

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(logging.New())
}

// Debugw logs msg at debug level.
func Debugw(msg string, keysAndValues ...any) {
	current.Load().Debug(msg, keysAndValues...)
}

// Infow logs msg at info level.
func Infow(msg string, keysAndValues ...any) {
	current.Load().Info(msg, keysAndValues...)
}

// Warnw logs msg at warning level.
func Warnw(msg string, keysAndValues ...any) {
	current.Load().Warn(msg, keysAndValues...)
}

// Errorw logs msg at error level.
func Errorw(msg string, keysAndValues ...any) {
	current.Load().Error(msg, keysAndValues...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) {
	current.Load().Error(fmt.Sprintf(format, args...))
}

// Initialize configures the logger from the process environment and the
// "debug" viper key.
func Initialize() {
	InitializeWithEnv(&env.OSReader{})
}

// InitializeWithEnv is Initialize with an injectable environment.
func InitializeWithEnv(envReader env.Reader) {
	opts := []logging.Option{}
	if textOutput(envReader) {
		opts = append(opts, logging.WithFormat(logging.FormatText))
	}
	if viper.GetBool("debug") {
		opts = append(opts, logging.WithLevel(slog.LevelDebug))
	}
	current.Store(logging.New(opts...))
}

func textOutput(envReader env.Reader) bool {
	unstructured, err := strconv.ParseBool(envReader.Getenv(unstructuredLogsEnv))
	if err != nil {
		return true
	}
	return unstructured
}
