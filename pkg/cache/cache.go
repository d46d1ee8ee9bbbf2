// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package cache provides a small byte-oriented TTL cache with in-memory and
// Redis backends.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values with a time-to-live.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}
