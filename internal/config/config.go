// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package config loads Circle's configuration from a YAML file and command
// line flags.
package config

import (
	"github.com/samber/oops"

	"github.com/circlehub/circle/internal/auth"
	"github.com/circlehub/circle/internal/event"
	"github.com/circlehub/circle/internal/logging"
	"github.com/circlehub/circle/internal/password"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig     `koanf:"server"`
	Hashing  auth.HashParams  `koanf:"hashing"`
	Password password.Policy  `koanf:"password"`
	Auth     auth.TokenConfig `koanf:"auth"`
	Events   event.Config     `koanf:"events"`
}

// ServerConfig configures the listeners and logging.
type ServerConfig struct {
	ListenAddr  string `koanf:"listen_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	LogFormat   string `koanf:"log_format" jsonschema:"enum=json,enum=text"`
	LogLevel    string `koanf:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns the configuration used for every value not set explicitly.
// The signing keys have no default.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:  "127.0.0.1:8000",
			MetricsAddr: "127.0.0.1:9100",
			LogFormat:   "json",
			LogLevel:    "info",
		},
		Hashing:  auth.DefaultHashParams(),
		Password: password.DefaultPolicy(),
		Auth: auth.TokenConfig{
			SessionLifetime: 1,
		},
		Events: event.DefaultConfig(),
	}
}

// Validate checks semantic rules the schema cannot express.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.listen_addr is required")
	}
	if _, err := logging.ParseLevel(c.Server.LogLevel); err != nil {
		return err
	}
	if err := c.Hashing.Validate(); err != nil {
		return err
	}
	if err := c.Password.Validate(); err != nil {
		return err
	}
	if c.Auth.PrivateKey == "" || c.Auth.PublicKey == "" {
		return oops.Code("CONFIG_INVALID").
			Hint("run `circle keygen` to create a key pair").
			Errorf("auth.private_key and auth.public_key are required")
	}
	if c.Auth.SessionLifetime < 1 {
		return oops.Code("CONFIG_INVALID").
			With("session_lifetime", c.Auth.SessionLifetime).
			Errorf("auth.session_lifetime must be at least one day")
	}
	if c.Events.BufferSize < 1 {
		return oops.Code("CONFIG_INVALID").
			With("buffer_size", c.Events.BufferSize).
			Errorf("events.buffer_size must be at least 1")
	}
	return nil
}
