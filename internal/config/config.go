// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the zatgpt client.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration locations (in order of precedence):
//   - environment variables (ZATGPT_*)
//   - ~/.zatgpt/config.toml
//   - built-in defaults
//
// A .env file in the working directory is honored via godotenv, matching how
// the backend itself is configured in development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete zatgpt client configuration.
type Config struct {
	Version string `toml:"version"`

	// API is the backend gateway configuration.
	API APIConfig `toml:"api"`

	// UI holds presentation policy knobs.
	UI UIConfig `toml:"ui"`
}

// APIConfig contains backend gateway configuration.
type APIConfig struct {
	// BaseURL is the backend REST API base URL, e.g. "http://localhost:8000".
	// All endpoint paths (/api/token/, /api/send-message/, ...) are resolved
	// against it.
	BaseURL string `toml:"base_url"`

	// TimeoutSecs bounds every backend call. The original client had no
	// timeout at all, which left the send button spinning forever on a dead
	// backend; a finite default is mandatory here.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig contains presentation policy knobs.
type UIConfig struct {
	// RestoreDraftOnError controls whether a failed send puts the typed
	// message back into the input box. The source revisions disagreed on
	// this, so it is an explicit policy rather than a hardcoded choice.
	RestoreDraftOnError bool `toml:"restore_draft_on_error"`

	// UsersPerPage is the admin table page size.
	UsersPerPage int `toml:"users_per_page"`

	// Markdown enables glamour rendering of assistant replies.
	Markdown bool `toml:"markdown"`
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default values applied when the config file or a field is absent.
const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultTimeoutSecs  = 60
	DefaultUsersPerPage = 8
)

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		UI: UIConfig{
			RestoreDraftOnError: true,
			UsersPerPage:        DefaultUsersPerPage,
			Markdown:            true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the zatgpt configuration directory path. The
// ZATGPT_CONFIG_DIR environment variable overrides the default of
// ~/.zatgpt, which also keeps tests away from the real home directory.
func ConfigDir() (string, error) {
	if dir := os.Getenv("ZATGPT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".zatgpt"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
// Credentials live under this directory, so group/world access is stripped.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// dotenvOnce loads a .env file from the working directory exactly once.
// Missing files are fine; an explicit environment always wins because
// godotenv.Load never overwrites variables that are already set.
var dotenvOnce sync.Once

func loadDotenv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Load loads configuration from the config file, falling back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	loadDotenv()

	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, decErr := toml.DecodeFile(path, cfg); decErr != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", decErr)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the TOML config file atomically.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFileWithDir(path, []byte(sb.String()), 0o600, 0o700)
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - ZATGPT_API_URL: overrides api.base_url (the one variable the backend
//     deployment is expected to provide, mirroring VITE_API_URL)
//   - ZATGPT_TIMEOUT_SECS: overrides api.timeout_secs
//   - ZATGPT_RESTORE_DRAFT: overrides ui.restore_draft_on_error
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("ZATGPT_API_URL"); u != "" {
		c.API.BaseURL = u
	}

	if secs := os.Getenv("ZATGPT_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.API.TimeoutSecs = n
		}
	}

	if restore := os.Getenv("ZATGPT_RESTORE_DRAFT"); restore != "" {
		c.UI.RestoreDraftOnError = restore == "1" || strings.EqualFold(restore, "true")
	}
}

// =============================================================================
// DEFAULTS / VALIDATION
// =============================================================================

// SetDefaults fills zero-valued fields with defaults. Needed after decoding
// a partial config file.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = DefaultTimeoutSecs
	}
	if c.UI.UsersPerPage <= 0 {
		c.UI.UsersPerPage = DefaultUsersPerPage
	}
}

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config field %q: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "api.base_url", Message: "must be an absolute http(s) URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "api.base_url", Message: "scheme must be http or https"}
	}
	if c.API.TimeoutSecs <= 0 {
		return ValidationError{Field: "api.timeout_secs", Message: "must be positive"}
	}
	if c.UI.UsersPerPage <= 0 {
		return ValidationError{Field: "ui.users_per_page", Message: "must be positive"}
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
