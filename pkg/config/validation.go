// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Error message templates for consistent error formatting
const (
	errFileNotFound     = "file not found or not accessible: %w"
	errFileRead         = "failed to read file: %w"
	errInvalidURL       = "invalid URL format: %w"
	errInvalidURLScheme = "URL must use http or https: %s"
)

const redacted = "REDACTED"

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerSecret == "" {
		errs = append(errs, errors.New("server_secret is required"))
	}
	if err := validateURL(c.WOPI.URL); err != nil {
		errs = append(errs, fmt.Errorf("wopi.url: %w", err))
	}
	if c.WOPI.ProxyStatusURL != "" {
		if err := validateURL(c.WOPI.ProxyStatusURL); err != nil {
			errs = append(errs, fmt.Errorf("wopi.proxy_status_url: %w", err))
		}
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.WOPI.RequestTimeout <= 0 || c.WOPI.ColdStartTimeout <= 0 {
		errs = append(errs, errors.New("wopi timeouts must be positive"))
	}
	if c.Cleanup.Interval <= 0 {
		errs = append(errs, errors.New("cleanup.interval must be positive"))
	}
	if !strings.HasPrefix(c.WebRoot, "/") {
		errs = append(errs, fmt.Errorf("web_root must start with '/': %q", c.WebRoot))
	}

	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypeSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for sqlite storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.type %q", c.Storage.Type))
	}

	switch c.Cache.Type {
	case CacheTypeMemory:
	case CacheTypeRedis:
		if c.Cache.Redis.Addr == "" && len(c.Cache.Redis.SentinelAddrs) == 0 {
			errs = append(errs, errors.New("cache.redis.addr or cache.redis.sentinel_addrs is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.type %q", c.Cache.Type))
	}

	if c.HostAPI.URL != "" {
		if err := validateURL(c.HostAPI.URL); err != nil {
			errs = append(errs, fmt.Errorf("host_api.url: %w", err))
		}
	}
	if c.HostAPI.PublicURL != "" {
		if err := validateURL(c.HostAPI.PublicURL); err != nil {
			errs = append(errs, fmt.Errorf("host_api.public_url: %w", err))
		}
	}
	if c.HostAPI.TokenFile != "" {
		if _, err := validateFilePath(c.HostAPI.TokenFile); err != nil {
			errs = append(errs, fmt.Errorf("host_api.token_file: %w", err))
		}
	}
	if c.WOPI.CABundle != "" {
		if _, err := validateFilePath(c.WOPI.CABundle); err != nil {
			errs = append(errs, fmt.Errorf("wopi.ca_bundle: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Redacted returns a copy with every secret replaced by a marker.
func (c *Config) Redacted() *Config {
	out := *c
	if out.ServerSecret != "" {
		out.ServerSecret = redacted
	}
	if out.Auth.JWTSecret != "" {
		out.Auth.JWTSecret = redacted
	}
	if out.Cache.Redis.Password != "" {
		out.Cache.Redis.Password = redacted
	}
	if c.UI.Defaults != nil {
		out.UI.Defaults = make(map[string]string, len(c.UI.Defaults))
		for k, v := range c.UI.Defaults {
			out.UI.Defaults[k] = v
		}
	}
	return &out
}

// YAML renders the redacted configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := neturl.Parse(raw)
	if err != nil {
		return fmt.Errorf(errInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf(errInvalidURLScheme, raw)
	}
	if u.Host == "" {
		return fmt.Errorf(errInvalidURL, errors.New("missing host"))
	}
	return nil
}

// validateFilePath validates that a file path exists and is accessible.
// It also cleans the file path using filepath.Clean.
func validateFilePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)

	if _, err := os.Stat(cleanPath); err != nil {
		return "", fmt.Errorf(errFileNotFound, err)
	}

	return cleanPath, nil
}

// readSecretFile reads a secret from disk and trims surrounding whitespace.
func readSecretFile(path string) (string, error) {
	cleanPath, err := validateFilePath(path)
	if err != nil {
		return "", err
	}
	// #nosec G304: path comes from operator configuration
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf(errFileRead, err)
	}
	return strings.TrimSpace(string(data)), nil
}
