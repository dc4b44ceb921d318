package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != "8090" {
		t.Errorf("Expected default port 8090, got %s", cfg.Server.Port)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected loopback host, got %s", cfg.Server.Host)
	}

	if cfg.Policy.PendingTimeout != 0 {
		t.Error("Expected pending timeout disabled by default")
	}

	if cfg.History.Capacity != 10000 {
		t.Errorf("Expected history capacity 10000, got %d", cfg.History.Capacity)
	}

	if !cfg.Rules.Watch {
		t.Error("Expected rules watching enabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("POLICY_PENDING_TIMEOUT", "2m")
	t.Setenv("HISTORY_CAPACITY", "50")
	t.Setenv("PROBE_CONCURRENCY", "8")
	t.Setenv("LOG_FILE", "/tmp/shell.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Server.Port)
	}

	if cfg.Policy.PendingTimeout != 2*time.Minute {
		t.Errorf("Expected 2m pending timeout, got %v", cfg.Policy.PendingTimeout)
	}

	if cfg.History.Capacity != 50 {
		t.Errorf("Expected capacity 50, got %d", cfg.History.Capacity)
	}

	if cfg.Probe.Concurrency != 8 {
		t.Errorf("Expected probe concurrency 8, got %d", cfg.Probe.Concurrency)
	}

	if cfg.Logging.File != "/tmp/shell.log" {
		t.Errorf("Expected log file path, got %s", cfg.Logging.File)
	}
}

func TestLoadOrDefaultBadEnv(t *testing.T) {
	t.Setenv("HISTORY_CAPACITY", "not-a-number")

	cfg := LoadOrDefault()
	if cfg.History.Capacity != 10000 {
		t.Error("Expected fallback to defaults on parse failure")
	}
}
