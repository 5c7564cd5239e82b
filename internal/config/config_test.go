// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Foundry.Model != "gpt-4o" {
		t.Errorf("default model = %q, want gpt-4o", cfg.Foundry.Model)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("default port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Chat.SystemPrompt == "" {
		t.Error("default system prompt is empty")
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("default timeout = %v, want 60s", cfg.RequestTimeout())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[foundry]
endpoint = "https://myresource.openai.azure.com"
api_key = "file-key"
model = "gpt-4o-mini"
request_timeout_secs = 30

[chat]
system_prompt = "be a paperclip"

[server]
port = 8080
rate_limit_per_min = 10
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Foundry.Endpoint != "https://myresource.openai.azure.com" {
		t.Errorf("endpoint = %q", cfg.Foundry.Endpoint)
	}
	if cfg.Foundry.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.Foundry.Model)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.RequestTimeout())
	}
	if cfg.Chat.SystemPrompt != "be a paperclip" {
		t.Errorf("system prompt = %q", cfg.Chat.SystemPrompt)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestLoadFileFixesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[foundry]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions not tightened, got %o", perm)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("AZURE_AI_FOUNDRY_ENDPOINT", "https://env.openai.azure.com")
	t.Setenv("AZURE_AI_FOUNDRY_API_KEY", "env-key")
	t.Setenv("AZURE_AI_FOUNDRY_MODEL", "env-model")
	t.Setenv("CLIPPY_SYSTEM_PROMPT", "env prompt")
	t.Setenv("CLIPPY_PORT", "9090")

	cfg := Default()
	cfg.Foundry.Endpoint = "https://file.openai.azure.com"
	cfg.Foundry.APIKey = "file-key"
	cfg.ApplyEnvOverrides()

	if cfg.Foundry.Endpoint != "https://env.openai.azure.com" {
		t.Errorf("endpoint = %q, env should win", cfg.Foundry.Endpoint)
	}
	if cfg.Foundry.APIKey != "env-key" {
		t.Errorf("api key = %q, env should win", cfg.Foundry.APIKey)
	}
	if cfg.Foundry.Model != "env-model" {
		t.Errorf("model = %q", cfg.Foundry.Model)
	}
	if cfg.Chat.SystemPrompt != "env prompt" {
		t.Errorf("system prompt = %q", cfg.Chat.SystemPrompt)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestEnvOverrideBadPortIgnored(t *testing.T) {
	t.Setenv("CLIPPY_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Server.Port != 5000 {
		t.Errorf("bad port env changed port to %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		apiKey   string
		wantErr  string
	}{
		{"valid", "https://r.openai.azure.com", "key", ""},
		{"missing endpoint", "", "key", "foundry.endpoint"},
		{"missing key", "https://r.openai.azure.com", "", "foundry.api_key"},
		{"bad scheme", "r.openai.azure.com", "key", "foundry.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Foundry.Endpoint = tt.endpoint
			cfg.Foundry.APIKey = tt.apiKey

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaultsFillsGaps(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Foundry.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Foundry.Model)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimitPerMin != 60 {
		t.Errorf("rate limit = %d", cfg.Server.RateLimitPerMin)
	}
	if cfg.Chat.SystemPrompt == "" {
		t.Error("system prompt not defaulted")
	}
}
