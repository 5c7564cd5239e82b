// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for clippy.
//
// Settings come from a TOML file with environment variable overrides
// applied last, so the env vars the hosted endpoint hands out always
// win over file contents.
//
// Configuration locations (in order of precedence):
//   - Environment variables (AZURE_AI_FOUNDRY_*, CLIPPY_*)
//   - ~/.clippy/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// DefaultSystemPrompt seeds every conversation unless overridden.
const DefaultSystemPrompt = "You are Clippy, the classic Microsoft Office assistant. " +
	"You are enthusiastic, slightly overeager, and love to help. " +
	"Start responses with a friendly observation when it fits, keep answers " +
	"concise, and never break character."

// Config represents the complete clippy configuration.
type Config struct {
	Foundry FoundryConfig `toml:"foundry"`
	Chat    ChatConfig    `toml:"chat"`
	Server  ServerConfig  `toml:"server"`
}

// FoundryConfig contains the Azure AI Foundry connection settings.
type FoundryConfig struct {
	// Endpoint is the base URL of the Foundry resource.
	Endpoint string `toml:"endpoint"`
	// APIKey authenticates requests. Prefer the environment variable
	// over storing this in the file.
	APIKey string `toml:"api_key"`
	// Model is the chat deployment name.
	Model string `toml:"model"`
	// RequestTimeoutSecs bounds each completion request.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// ChatConfig contains conversation settings shared by both surfaces.
type ChatConfig struct {
	// SystemPrompt seeds every new transcript.
	SystemPrompt string `toml:"system_prompt"`
	// HistoryFile is where the CLI stores readline history.
	HistoryFile string `toml:"history_file"`
}

// ServerConfig contains web surface settings.
type ServerConfig struct {
	// Port the HTTP server listens on.
	Port int `toml:"port"`
	// RateLimitPerMin caps chat requests per client per minute.
	RateLimitPerMin int `toml:"rate_limit_per_min"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Foundry: FoundryConfig{
			Model:              "gpt-4o",
			RequestTimeoutSecs: 60,
		},
		Chat: ChatConfig{
			SystemPrompt: DefaultSystemPrompt,
		},
		Server: ServerConfig{
			Port:            5000,
			RateLimitPerMin: 60,
		},
	}
}

// RequestTimeout returns the completion timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.Foundry.RequestTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Foundry.RequestTimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the clippy configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".clippy"), nil
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
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions tightens config file permissions to 0600.
// SECURITY: The file may contain the API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file if present, then applies environment
// overrides and validates.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFile(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	return cfg, nil
}

// LoadFile merges the TOML file at path into cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadFile(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variables on top of the
// loaded configuration. Env vars always win.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AZURE_AI_FOUNDRY_ENDPOINT"); v != "" {
		c.Foundry.Endpoint = v
	}
	if v := os.Getenv("AZURE_AI_FOUNDRY_API_KEY"); v != "" {
		c.Foundry.APIKey = v
	}
	if v := os.Getenv("AZURE_AI_FOUNDRY_MODEL"); v != "" {
		c.Foundry.Model = v
	}
	if v := os.Getenv("CLIPPY_SYSTEM_PROMPT"); v != "" {
		c.Chat.SystemPrompt = v
	}
	if v := os.Getenv("CLIPPY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			c.Server.Port = port
		}
	}
}

// SetDefaults fills in any fields left empty after load.
func (c *Config) SetDefaults() {
	if strings.TrimSpace(c.Foundry.Model) == "" {
		c.Foundry.Model = "gpt-4o"
	}
	if c.Foundry.RequestTimeoutSecs <= 0 {
		c.Foundry.RequestTimeoutSecs = 60
	}
	if strings.TrimSpace(c.Chat.SystemPrompt) == "" {
		c.Chat.SystemPrompt = DefaultSystemPrompt
	}
	if c.Chat.HistoryFile == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Chat.HistoryFile = filepath.Join(dir, "history")
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		c.Server.Port = 5000
	}
	if c.Server.RateLimitPerMin <= 0 {
		c.Server.RateLimitPerMin = 60
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that the connection settings are usable. Called at
// startup; a missing endpoint or key is fatal for both surfaces.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Foundry.Endpoint) == "" {
		return ValidationError{
			Field:   "foundry.endpoint",
			Message: "endpoint is required (set AZURE_AI_FOUNDRY_ENDPOINT)",
		}
	}
	if !strings.HasPrefix(c.Foundry.Endpoint, "http://") && !strings.HasPrefix(c.Foundry.Endpoint, "https://") {
		return ValidationError{
			Field:   "foundry.endpoint",
			Message: "endpoint must be an http(s) URL",
		}
	}
	if strings.TrimSpace(c.Foundry.APIKey) == "" {
		return ValidationError{
			Field:   "foundry.api_key",
			Message: "API key is required (set AZURE_AI_FOUNDRY_API_KEY)",
		}
	}
	return nil
}
