package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8421" {
		t.Errorf("expected default port 8421, got %q", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected loopback default host, got %q", cfg.Server.Host)
	}
	if cfg.Relay.TimeoutSeconds != 30 {
		t.Errorf("expected default relay timeout 30s, got %d", cfg.Relay.TimeoutSeconds)
	}
	if cfg.Bridge.MessagesPerSecond != 20 || cfg.Bridge.Burst != 40 {
		t.Errorf("unexpected bridge limits: %+v", cfg.Bridge)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("expected rate limiting enabled by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RELAY_URL", "http://relay.local:3001")
	t.Setenv("RELAY_TOKEN", "env-token")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("expected env port, got %q", cfg.Server.Port)
	}
	if cfg.Relay.URL != "http://relay.local:3001" || cfg.Relay.Token != "env-token" {
		t.Errorf("unexpected relay config: %+v", cfg.Relay)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadFileOverridesEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RELAY_TOKEN", "env-token")

	path := filepath.Join(t.TempDir(), "bridge.yaml")
	file := []byte("server:\n  port: \"7777\"\nrelay:\n  token: file-token\n")
	if err := os.WriteFile(path, file, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Errorf("file port must win over env, got %q", cfg.Server.Port)
	}
	if cfg.Relay.Token != "file-token" {
		t.Errorf("file token must win over env, got %q", cfg.Relay.Token)
	}
	// Keys the file omits keep their env/default values.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected default host preserved, got %q", cfg.Server.Host)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected missing file to error")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [notamap"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected malformed yaml to error")
	}
}
