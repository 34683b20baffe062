package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the config file at an empty temp dir so a developer's
// ~/.vecway/config.toml never leaks into the tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VECWAY_CONFIG", filepath.Join(dir, "config.toml"))
	for _, key := range []string{
		"SERVER_PORT", "APP_SECRET", "LOG_LEVEL", "OWNED_BY", "ENABLE_REQUEST_LOG",
		"DB_PATH", "RATE_LIMIT", "BACKEND_URL", "BACKEND_PING_INTERVAL", "BACKEND_PING_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != ":8002" {
		t.Errorf("expected port :8002, got %q", cfg.ServerPort)
	}
	if cfg.OwnedBy != "openai" {
		t.Errorf("expected owned_by openai, got %q", cfg.OwnedBy)
	}
	if cfg.Backend.URL != DefaultBackendURL {
		t.Errorf("expected backend url %q, got %q", DefaultBackendURL, cfg.Backend.URL)
	}
	if cfg.Backend.PingInterval != time.Second || cfg.Backend.PingTimeout != 3*time.Second {
		t.Errorf("unexpected heartbeat %v/%v", cfg.Backend.PingInterval, cfg.Backend.PingTimeout)
	}
	if !cfg.EnableRequestLog {
		t.Error("expected request log enabled by default")
	}
	if len(cfg.Models) != len(DefaultModels()) {
		t.Errorf("expected %d models, got %d", len(DefaultModels()), len(cfg.Models))
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	content := `
server_port = ":9000"
app_secret = "from-file"
rate_limit = 30

[backend]
url = "ws://file.example/ws"
ping_interval = "2s"

[[models]]
slug = "gpt-4o"
model = "GPT-4"

[[models]]
slug = "house-model"
model = "GPT-4o"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("APP_SECRET", "from-env")
	t.Setenv("BACKEND_PING_TIMEOUT", "750ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != ":9000" {
		t.Errorf("expected file port, got %q", cfg.ServerPort)
	}
	if cfg.AppSecret != "from-env" {
		t.Errorf("expected env secret to win, got %q", cfg.AppSecret)
	}
	if cfg.RateLimit != 30 {
		t.Errorf("expected rate limit 30, got %d", cfg.RateLimit)
	}
	if cfg.Backend.URL != "ws://file.example/ws" {
		t.Errorf("expected file backend url, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.PingInterval != 2*time.Second {
		t.Errorf("expected 2s ping interval, got %v", cfg.Backend.PingInterval)
	}
	if cfg.Backend.PingTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms ping timeout, got %v", cfg.Backend.PingTimeout)
	}

	models := map[string]string{}
	for _, m := range cfg.Models {
		models[m.Slug] = m.Model
	}
	if models["gpt-4o"] != "GPT-4" {
		t.Errorf("expected override gpt-4o -> GPT-4, got %q", models["gpt-4o"])
	}
	if models["house-model"] != "GPT-4o" {
		t.Errorf("expected added alias house-model, got %q", models["house-model"])
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("server_port = ["), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}

func TestMergeModels(t *testing.T) {
	base := []ModelAlias{{Slug: "a", Model: "A"}, {Slug: "b", Model: "B"}}
	overrides := []ModelAlias{{Slug: "b", Model: "A"}, {Slug: "c", Model: "C"}, {Slug: "", Model: "X"}}

	got := MergeModels(base, overrides)

	want := []ModelAlias{{Slug: "a", Model: "A"}, {Slug: "b", Model: "A"}, {Slug: "c", Model: "C"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppSecret: "s",
			Backend:   Backend{URL: "wss://x/ws", PingInterval: time.Second, PingTimeout: time.Second},
			Models:    DefaultModels(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing secret", func(c *Config) { c.AppSecret = "" }, true},
		{"http backend", func(c *Config) { c.Backend.URL = "https://x" }, true},
		{"zero ping interval", func(c *Config) { c.Backend.PingInterval = 0 }, true},
		{"no models", func(c *Config) { c.Models = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnsureConfigFile(t *testing.T) {
	dir := isolate(t)

	if err := EnsureConfigFile(); err != nil {
		t.Fatalf("EnsureConfigFile failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	// The template is entirely commented out, so it must load as defaults.
	if _, err := Load(); err != nil {
		t.Fatalf("Load after EnsureConfigFile failed: %v", err)
	}
}
