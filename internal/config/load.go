// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"listen-addr":       "server.listen_addr",
	"metrics-addr":      "server.metrics_addr",
	"log-format":        "server.log_format",
	"log-level":         "server.log_level",
	"session-lifetime":  "auth.session_lifetime",
	"event-buffer-size": "events.buffer_size",
}

// RegisterFlags adds the configuration override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("listen-addr", d.Server.ListenAddr, "API listen address")
	fs.String("metrics-addr", d.Server.MetricsAddr, "metrics and health listen address (empty disables)")
	fs.String("log-format", d.Server.LogFormat, "log format (json, text)")
	fs.String("log-level", d.Server.LogLevel, "log level (debug, info, warn, error)")
	fs.Int("session-lifetime", d.Auth.SessionLifetime, "session lifetime in days")
	fs.Int("event-buffer-size", d.Events.BufferSize, "per-subscriber event buffer")
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when empty), and the flags in fs that were set explicitly. The
// result is validated.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := file.Provider(path).ReadBytes()
		if err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateYAML(data); err != nil {
			return nil, oops.With("path", path).Wrap(err)
		}
		// Parse the bytes that were validated, not a second read of the file.
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, known := flagKeys[f.Name]
			if !known || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
