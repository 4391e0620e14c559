// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

// Package config loads portal configuration from defaults, an optional
// YAML file, command-line flags, and environment overrides, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default values applied before any file or flag input.
const (
	DefaultHTTPAddr      = "127.0.0.1:8080"
	DefaultMetricsAddr   = "127.0.0.1:9100"
	DefaultLogFormat     = "json"
	DefaultSessionExpiry = 24 * time.Hour
	DefaultBearerExpiry  = time.Hour
)

// Config holds the full portal configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Bearer   BearerConfig   `koanf:"bearer"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP and metrics listeners.
type ServerConfig struct {
	Addr        string `koanf:"addr"`
	MetricsAddr string `koanf:"metrics_addr"`
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// SessionConfig configures web session cookies.
type SessionConfig struct {
	Expiry time.Duration `koanf:"expiry"`
}

// BearerConfig configures signed bearer tokens for API clients.
type BearerConfig struct {
	Secret string        `koanf:"secret"`
	Expiry time.Duration `koanf:"expiry"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Format string `koanf:"format"`
}

// Validate checks that the configuration is usable for serving.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.Session.Expiry <= 0 {
		return fmt.Errorf("session.expiry must be positive")
	}
	if c.Bearer.Expiry <= 0 {
		return fmt.Errorf("bearer.expiry must be positive")
	}
	return nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:        DefaultHTTPAddr,
			MetricsAddr: DefaultMetricsAddr,
		},
		Session: SessionConfig{Expiry: DefaultSessionExpiry},
		Bearer:  BearerConfig{Expiry: DefaultBearerExpiry},
		Log:     LogConfig{Format: DefaultLogFormat},
	}
}

// Load builds a Config from the optional YAML file at path, the given
// flag set, and environment variables. A missing path is only an error
// when it was explicitly provided. DATABASE_URL and JWT_SECRET
// environment variables override their file and flag counterparts.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	cfg := defaults()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Bearer.Secret = secret
	}

	return cfg, nil
}
