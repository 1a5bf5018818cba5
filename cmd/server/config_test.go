package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Address != ":8080" {
		t.Errorf("server address = %q, want :8080", cfg.Server.Address)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Address != ":9090" {
		t.Errorf("metrics = %v %q, want enabled on :9090", cfg.Metrics.Enabled, cfg.Metrics.Address)
	}
	if cfg.Database.Path != "data/alerthub.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if !cfg.Reminders.Enabled || cfg.Reminders.Interval != 2*time.Hour || cfg.Reminders.Policy != "always" {
		t.Errorf("reminders = %+v, want enabled 2h always", cfg.Reminders)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate default config: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	content := `
server:
  address: ":9100"
database:
  path: /tmp/alerthub-test.db
reminders:
  enabled: true
  interval: 30m
  policy: suppress_read
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Address != ":9100" {
		t.Errorf("server address = %q, want :9100", cfg.Server.Address)
	}
	if cfg.Reminders.Interval != 30*time.Minute {
		t.Errorf("reminder interval = %v, want 30m", cfg.Reminders.Interval)
	}
	if cfg.Reminders.Policy != "suppress_read" {
		t.Errorf("reminder policy = %q", cfg.Reminders.Policy)
	}
	// Missing sections fall back to defaults.
	if cfg.Metrics.Address != ":9090" {
		t.Errorf("metrics address = %q, want default", cfg.Metrics.Address)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidate_RejectsUnknownPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reminders.Policy = "sometimes"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown reminders.policy")
	}
}

func TestConfigValidate_RejectsNegativeInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reminders.Interval = -time.Hour

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative reminders.interval")
	}
}
