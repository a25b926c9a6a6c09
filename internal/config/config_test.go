package config_test

import (
	"testing"

	"compreg/internal/config"
)

// TestLoadDefaults tests that defaults apply with an empty environment.
func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %s, want :8080", cfg.Addr)
	}
	if cfg.DBPath != "compreg.db" {
		t.Errorf("DBPath = %s, want compreg.db", cfg.DBPath)
	}
	if cfg.IsProduction() {
		t.Error("development config should not report production")
	}
}

// TestLoadOverrides tests that environment variables override defaults.
func TestLoadOverrides(t *testing.T) {
	t.Setenv("COMPREG_ADDR", ":9090")
	t.Setenv("COMPREG_ENV", "production")
	t.Setenv("COMPREG_SLOW_QUERY_MS", "250")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %s, want :9090", cfg.Addr)
	}
	if !cfg.IsProduction() {
		t.Error("production config should report production")
	}
	if cfg.SlowQueryMs != 250 {
		t.Errorf("SlowQueryMs = %d, want 250", cfg.SlowQueryMs)
	}
}
