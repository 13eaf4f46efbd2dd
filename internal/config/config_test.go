package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PICASSO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	// An explicitly named file must exist.
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	t.Setenv("PICASSO_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Functions.BaseURL == "" {
		t.Error("Functions.BaseURL should have a default")
	}
	if cfg.Reconciler.Schedule != "*/5 * * * *" {
		t.Errorf("Schedule = %q", cfg.Reconciler.Schedule)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9999
functions:
  base_url: http://fn.internal:8085
reconciler:
  enabled: true
  prune: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PICASSO_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Functions.BaseURL != "http://fn.internal:8085" {
		t.Errorf("BaseURL = %s", cfg.Functions.BaseURL)
	}
	if !cfg.Reconciler.Prune {
		t.Error("Prune should be true")
	}
	// Untouched values keep their defaults.
	if cfg.Server.ReadTimeoutSec != 30 {
		t.Errorf("ReadTimeoutSec = %d, want 30", cfg.Server.ReadTimeoutSec)
	}
}

func TestEnvironmentWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PICASSO_CONFIG", path)
	t.Setenv("PICASSO_SERVER_PORT", "7777")
	t.Setenv("PICASSO_DB_DRIVER", "postgres")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %s, want postgres", cfg.Database.Driver)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PICASSO_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
