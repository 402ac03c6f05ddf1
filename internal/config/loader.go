package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// maxConfigFileSize caps config files to keep a corrupted or hostile
	// file from exhausting memory.
	maxConfigFileSize = 1024 * 1024 // 1MB

	// envPrefix scopes environment overrides so a library embedder's own
	// variables are never picked up by accident.
	envPrefix = "GENVALID_"
)

// Load loads configuration from a YAML file, then overrides with environment
// variables, then backfills defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (GENVALID_RETRY_MAX_ATTEMPTS, GENVALID_LOGGING_LEVEL, ...)
//  2. YAML config file (default: ~/.config/genvalid/config.yaml)
//  3. Hardcoded defaults
//
// A missing file is not an error; env vars and defaults still apply.
//
// Environment variables map to config keys by stripping the prefix,
// lowercasing, and splitting on the first underscore:
//
//	GENVALID_RETRY_MAX_ATTEMPTS -> retry.max_attempts
//	GENVALID_LOGGING_LEVEL      -> logging.level
//	GENVALID_TELEMETRY_ENABLED  -> telemetry.enabled
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "genvalid", "config.yaml")
	}

	var content []byte
	if info, err := os.Stat(configPath); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}
		content, err = os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return LoadBytes(content)
}

// LoadBytes assembles configuration from pre-read YAML content plus
// environment overrides and defaults. A nil or empty content is allowed.
func LoadBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// GENVALID_RETRY_MAX_ATTEMPTS -> retry.max_attempts: strip the
		// prefix, lowercase, split section from field on the first
		// underscore, keep underscores inside the field name.
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
