// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

// Package config loads and validates service configuration. Values layer
// in precedence order: built-in defaults, then the YAML config file, then
// command-line flags.
package config

import (
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/openlot/openlot/internal/auth"
	"github.com/openlot/openlot/internal/ownership"
)

// Default configuration values.
const (
	DefaultLogFormat   = "json"
	DefaultMetricsAddr = "127.0.0.1:9100"
)

// Config is the root service configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Ownership OwnershipConfig `koanf:"ownership"`
	Cards     CardsConfig     `koanf:"cards"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig configures token signing and password hashing.
type AuthConfig struct {
	// TokenTTL bounds session lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// Leeway tolerates clock skew between issuer and verifier.
	Leeway time.Duration `koanf:"leeway"`

	// SigningKeys maps key IDs to hex-encoded HMAC keys. Old keys stay in
	// the map during rotation so outstanding tokens keep verifying.
	SigningKeys map[string]string `koanf:"signing_keys"`

	// ActiveKey names the signing key used for new tokens.
	ActiveKey string `koanf:"active_key"`

	Argon2 Argon2Config `koanf:"argon2"`
}

// Argon2Config tunes password hashing cost. Zero values select the
// built-in defaults.
type Argon2Config struct {
	Time    uint32 `koanf:"time"`
	Memory  uint32 `koanf:"memory"` // KiB
	Threads uint8  `koanf:"threads"`
}

// OwnershipConfig configures the resource access policy.
type OwnershipConfig struct {
	// Enforce toggles ownership checks. Disable only in development.
	Enforce bool `koanf:"enforce"`
}

// CardsConfig configures card number encryption.
type CardsConfig struct {
	// VaultKey is the hex-encoded 32-byte AES key sealing card numbers.
	VaultKey string `koanf:"vault_key"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"` // "json" or "text"
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
}

// MetricsConfig configures the observability endpoint.
type MetricsConfig struct {
	// Addr is the metrics/health listen address. Empty disables the server.
	Addr string `koanf:"addr"`
}

// Load reads configuration from the given YAML file (optional) and flag
// set (optional), layered over defaults.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "merge flags").
				Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	// Ownership enforcement defaults to on. A bool zero value cannot tell
	// "omitted" from "false", so presence is checked on the raw keys.
	if !k.Exists("ownership.enforce") {
		cfg.Ownership.Enforce = true
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values with built-in defaults.
func (c *Config) applyDefaults() {
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = auth.DefaultTokenTTL
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
}

// Validate checks the configuration for use by the serve command.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if len(c.Auth.SigningKeys) == 0 {
		return oops.Code("CONFIG_MISSING_SIGNING_KEY").Errorf("auth.signing_keys must contain at least one key")
	}
	if c.Auth.ActiveKey == "" {
		return oops.Code("CONFIG_MISSING_SIGNING_KEY").Errorf("auth.active_key is required")
	}
	if _, ok := c.Auth.SigningKeys[c.Auth.ActiveKey]; !ok {
		return oops.Code("CONFIG_MISSING_SIGNING_KEY").
			With("active_key", c.Auth.ActiveKey).
			Errorf("auth.active_key does not name a key in auth.signing_keys")
	}
	for kid, hexKey := range c.Auth.SigningKeys {
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return oops.Code("CONFIG_INVALID").
				With("kid", kid).
				Wrapf(err, "auth.signing_keys[%s] is not valid hex", kid)
		}
		if len(key) < auth.MinSigningKeyLen {
			return oops.Code("CONFIG_WEAK_SIGNING_KEY").
				With("kid", kid).
				With("key_len", len(key)).
				Errorf("auth.signing_keys[%s] must be at least %d bytes", kid, auth.MinSigningKeyLen)
		}
	}
	if c.Auth.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.token_ttl must be positive")
	}
	if c.Auth.Leeway < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.leeway cannot be negative")
	}
	if c.Cards.VaultKey == "" {
		return oops.Code("CONFIG_INVALID").Errorf("cards.vault_key is required")
	}
	key, err := hex.DecodeString(c.Cards.VaultKey)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrapf(err, "cards.vault_key is not valid hex")
	}
	if len(key) != ownership.VaultKeyLen {
		return oops.Code("CONFIG_INVALID").
			With("key_len", len(key)).
			Errorf("cards.vault_key must be exactly %d bytes", ownership.VaultKeyLen)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("format", c.Log.Format).
			Errorf("log.format must be 'json' or 'text'")
	}
	return nil
}

// Keyring builds the token signing keyring from the configured keys.
func (c *Config) Keyring() (*auth.Keyring, error) {
	keys := make(map[string][]byte, len(c.Auth.SigningKeys))
	for kid, hexKey := range c.Auth.SigningKeys {
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("kid", kid).
				Wrapf(err, "signing key is not valid hex")
		}
		keys[kid] = key
	}
	return auth.NewKeyring(c.Auth.ActiveKey, keys)
}

// VaultKey decodes the card vault key.
func (c *Config) VaultKey() ([]byte, error) {
	key, err := hex.DecodeString(c.Cards.VaultKey)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "cards.vault_key is not valid hex")
	}
	return key, nil
}

// HasherParams maps the argon2 section to hasher parameters. Zero fields
// select the hasher defaults.
func (c *Config) HasherParams() auth.Params {
	return auth.Params{
		Time:    c.Auth.Argon2.Time,
		Memory:  c.Auth.Argon2.Memory,
		Threads: c.Auth.Argon2.Threads,
	}
}

// LogLevel parses the configured level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
