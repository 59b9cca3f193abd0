package config_test

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/roflsunriz/VBBB-sub002/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		t.Errorf("RequestTimeout should be > 0, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxRetries <= 0 {
		t.Errorf("MaxRetries should be > 0, got %d", cfg.MaxRetries)
	}
	if cfg.RoundIntervalMinutes <= 0 {
		t.Errorf("RoundIntervalMinutes should be > 0, got %d", cfg.RoundIntervalMinutes)
	}
}

func TestLoadConfigValidFile(t *testing.T) {
	raw := map[string]interface{}{
		"data_dir":               "/tmp/bbsengine",
		"request_timeout":        int64(30 * time.Second),
		"max_retries":            3,
		"proxy_file":             "",
		"browser_parity":         true,
		"round_enabled":          true,
		"round_interval_minutes": 20,
	}
	f, err := os.CreateTemp(t.TempDir(), "config*.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.NewEncoder(f).Encode(raw); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir != "/tmp/bbsengine" {
		t.Errorf("got DataDir=%q, want /tmp/bbsengine", cfg.DataDir)
	}
	if !cfg.BrowserParity {
		t.Errorf("got BrowserParity=false, want true")
	}
	if cfg.RoundIntervalMinutes != 20 {
		t.Errorf("got RoundIntervalMinutes=%d, want 20", cfg.RoundIntervalMinutes)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig("/nonexistent/path/config.json")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bad*.json")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not valid json}")
	f.Close()

	_, err = config.LoadConfig(f.Name())
	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "unknown*.json")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString(`{"data_dir": "/tmp", "not_a_real_field": 1}`)
	f.Close()

	_, err = config.LoadConfig(f.Name())
	if err == nil {
		t.Error("expected error for an unknown field, got nil")
	}
}
