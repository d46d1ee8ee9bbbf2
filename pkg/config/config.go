// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the broker configuration from a YAML file,
// WOPIBROKER_* environment variables and command-line flags through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "WOPIBROKER"

// Storage backends.
const (
	StorageTypeMemory = "memory"
	StorageTypeSQLite = "sqlite"
)

// Cache backends.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// Config is the effective broker configuration.
type Config struct {
	Debug         bool   `mapstructure:"debug" yaml:"debug"`
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address"`

	// WebRoot is the application root; the passphrase cookie is scoped to it.
	WebRoot string `mapstructure:"web_root" yaml:"web_root"`

	// ServerSecret keys the state codec and credential sealing.
	ServerSecret     string `mapstructure:"server_secret" yaml:"server_secret"`
	ServerSecretFile string `mapstructure:"server_secret_file" yaml:"server_secret_file,omitempty"`

	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	// TrustForwardedProto honours X-Forwarded-Proto from a TLS terminating
	// proxy when marking the passphrase cookie Secure.
	TrustForwardedProto bool `mapstructure:"trust_forwarded_proto" yaml:"trust_forwarded_proto"`

	WOPI    WOPIConfig    `mapstructure:"wopi" yaml:"wopi"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Cleanup CleanupConfig `mapstructure:"cleanup" yaml:"cleanup"`
	HostAPI HostAPIConfig `mapstructure:"host_api" yaml:"host_api"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
}

// WOPIConfig configures access to the remote editor.
type WOPIConfig struct {
	// URL is the editor base URL; discovery lives under /hosting/discovery.
	URL string `mapstructure:"url" yaml:"url"`

	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ColdStartTimeout time.Duration `mapstructure:"cold_start_timeout" yaml:"cold_start_timeout"`

	// ProxyStatusURL, when set, is polled before a discovery fetch to learn
	// whether a managed editor instance is still starting.
	ProxyStatusURL string `mapstructure:"proxy_status_url" yaml:"proxy_status_url,omitempty"`

	DisableCertificateVerification bool `mapstructure:"disable_certificate_verification" yaml:"disable_certificate_verification"`

	// CABundle is a PEM file of extra roots trusted for the editor.
	CABundle string `mapstructure:"ca_bundle" yaml:"ca_bundle,omitempty"`
}

// StorageConfig selects the token and credential store.
type StorageConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// CacheConfig selects the discovery cache.
type CacheConfig struct {
	Type  string      `mapstructure:"type" yaml:"type"`
	Redis RedisConfig `mapstructure:"redis" yaml:"redis,omitempty"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr          string   `mapstructure:"addr" yaml:"addr,omitempty"`
	MasterName    string   `mapstructure:"master_name" yaml:"master_name,omitempty"`
	SentinelAddrs []string `mapstructure:"sentinel_addrs" yaml:"sentinel_addrs,omitempty"`
	Username      string   `mapstructure:"username" yaml:"username,omitempty"`
	Password      string   `mapstructure:"password" yaml:"password,omitempty"`
	DB            int      `mapstructure:"db" yaml:"db,omitempty"`
	KeyPrefix     string   `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`
}

// CleanupConfig configures the reconciler.
type CleanupConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// HostAPIConfig points at the host application that owns files, shares,
// users and logins.
type HostAPIConfig struct {
	URL       string        `mapstructure:"url" yaml:"url"`
	TokenFile string        `mapstructure:"token_file" yaml:"token_file,omitempty"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// PublicURL is the absolute base URL of the host as seen by the editor.
	// Defaults to the scheme and host of URL.
	PublicURL string `mapstructure:"public_url" yaml:"public_url,omitempty"`

	// AllowInsecure permits a plain HTTP host API, for local development.
	AllowInsecure bool `mapstructure:"allow_insecure" yaml:"allow_insecure"`
}

// AuthConfig configures verification of API caller tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	Issuer    string `mapstructure:"issuer" yaml:"issuer,omitempty"`
	Audience  string `mapstructure:"audience" yaml:"audience,omitempty"`
}

// UIConfig carries the editor presentation defaults sent with document state.
type UIConfig struct {
	Theme    string            `mapstructure:"theme" yaml:"theme"`
	Defaults map[string]string `mapstructure:"defaults" yaml:"defaults,omitempty"`
}

var envOnlyKeys = []string{
	"debug",
	"server_secret",
	"server_secret_file",
	"wopi.url",
	"wopi.proxy_status_url",
	"host_api.url",
	"host_api.token_file",
	"host_api.public_url",
	"host_api.allow_insecure",
	"auth.jwt_secret",
	"auth.issuer",
	"auth.audience",
	"cache.redis.addr",
	"cache.redis.username",
	"cache.redis.password",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", ":9980")
	v.SetDefault("web_root", "/")
	v.SetDefault("token_ttl", 10*time.Hour)
	v.SetDefault("trust_forwarded_proto", false)
	v.SetDefault("wopi.request_timeout", 45*time.Second)
	v.SetDefault("wopi.cold_start_timeout", 180*time.Second)
	v.SetDefault("wopi.disable_certificate_verification", false)
	v.SetDefault("storage.type", StorageTypeMemory)
	v.SetDefault("storage.path", "wopibroker.db")
	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis.key_prefix", "wopibroker:")
	v.SetDefault("cleanup.interval", 600*time.Second)
	v.SetDefault("host_api.timeout", 30*time.Second)
	v.SetDefault("ui.theme", "default")
}

// Load reads the configuration into a Config. path may be empty, in which
// case only defaults, environment variables and bound flags apply.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without defaults are invisible to Unmarshal unless bound explicitly.
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if cfg.ServerSecret == "" && cfg.ServerSecretFile != "" {
		secret, err := readSecretFile(cfg.ServerSecretFile)
		if err != nil {
			return nil, fmt.Errorf("server_secret_file: %w", err)
		}
		cfg.ServerSecret = secret
	}
	return cfg, nil
}
