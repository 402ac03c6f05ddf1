// Package config provides configuration loading for programs embedding the
// genvalid retry engine.
//
// Configuration is loaded from a YAML file, then overridden by environment
// variables, then backfilled with defaults. The retry section converts
// directly into a retry.Policy.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/genvalid/internal/logging"
	"github.com/fyrsmithlabs/genvalid/pkg/retry"
)

// Config holds the complete configuration.
type Config struct {
	Retry     RetryConfig     `koanf:"retry"`
	Logging   logging.Config  `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// RetryConfig mirrors retry.Policy with text-unmarshalable durations so it
// can be populated from YAML and environment variables.
type RetryConfig struct {
	MaxAttempts        int      `koanf:"max_attempts"`
	InitialDelay       Duration `koanf:"initial_delay"`
	ExponentialBackoff bool     `koanf:"exponential_backoff"`
	BackoffMultiplier  float64  `koanf:"backoff_multiplier"`
	MaxDelay           Duration `koanf:"max_delay"`
	LogAttempts        bool     `koanf:"log_attempts"`
}

// Policy converts the section into an engine policy.
func (c RetryConfig) Policy() *retry.Policy {
	return &retry.Policy{
		MaxAttempts:        c.MaxAttempts,
		InitialDelay:       c.InitialDelay.Duration(),
		ExponentialBackoff: c.ExponentialBackoff,
		BackoffMultiplier:  c.BackoffMultiplier,
		MaxDelay:           c.MaxDelay.Duration(),
		LogAttempts:        c.LogAttempts,
	}
}

// TelemetryConfig holds OpenTelemetry settings consumed by the embedding
// application; the engine itself instruments via the global providers.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// applyDefaults backfills missing values.
func applyDefaults(cfg *Config) {
	defaults := retry.DefaultPolicy()
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = defaults.MaxAttempts
		// A wholly absent retry section also gets the default booleans.
		cfg.Retry.ExponentialBackoff = defaults.ExponentialBackoff
		cfg.Retry.LogAttempts = defaults.LogAttempts
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = Duration(defaults.InitialDelay)
	}
	if cfg.Retry.BackoffMultiplier == 0 {
		cfg.Retry.BackoffMultiplier = defaults.BackoffMultiplier
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = Duration(defaults.MaxDelay)
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Fields == nil {
		cfg.Logging.Fields = map[string]string{"service": "genvalid"}
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "genvalid"
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := c.Retry.Policy().Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
