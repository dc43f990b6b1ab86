package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewired-gh/broadway/internal/chart"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
dataset:
  url: "https://example.com/d3data.json"
  timeout: 15s

server:
  addr: "127.0.0.1:9000"

chart:
  width: 1200
  transition: 750ms
  zero_capacity: omit
  attendance_color: "#336699"

page:
  paragraphs:
    - "First paragraph."
    - "Second paragraph."

logging:
  level: "debug"
  format: "text"
`)

	// Test Load
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify values
	if cfg.Dataset.URL != "https://example.com/d3data.json" {
		t.Errorf("Unexpected dataset URL: %s", cfg.Dataset.URL)
	}
	if cfg.Dataset.Timeout != 15*time.Second {
		t.Errorf("Unexpected timeout: %v", cfg.Dataset.Timeout)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Unexpected addr: %s", cfg.Server.Addr)
	}
	if len(cfg.Page.Paragraphs) != 2 {
		t.Errorf("Expected 2 paragraphs, got %d", len(cfg.Page.Paragraphs))
	}

	layout := cfg.Layout()
	if layout.Width != 1200 {
		t.Errorf("Unexpected width: %v", layout.Width)
	}
	if layout.Height != 500 {
		t.Errorf("Expected default height 500, got %v", layout.Height)
	}
	if layout.Transition != 750*time.Millisecond {
		t.Errorf("Unexpected transition: %v", layout.Transition)
	}
	if layout.ZeroCapacity != chart.ZeroCapacityOmit {
		t.Errorf("Unexpected zero capacity policy: %s", layout.ZeroCapacity)
	}
	if layout.RemainingColor != "lightblue" {
		t.Errorf("Expected default remaining color, got %s", layout.RemainingColor)
	}

	// Test Validate
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := Load(path, false); err == nil {
		t.Error("Expected error for missing config file")
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load with allowMissing failed: %v", err)
	}
	if cfg.Dataset.URL != DefaultDatasetURL {
		t.Errorf("Expected default dataset URL, got %s", cfg.Dataset.URL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("BROADWAY_DATASET_URL", "./data/d3data.json")
	t.Setenv("BROADWAY_LOGGING_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"), false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dataset.URL != "./data/d3data.json" {
		t.Errorf("Expected env dataset URL, got %s", cfg.Dataset.URL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected env log level, got %s", cfg.Logging.Level)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":8081\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BROADWAY_SERVER_ADDR=:9191\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("BROADWAY_SERVER_ADDR") })

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9191" {
		t.Errorf("Expected .env addr, got %s", cfg.Server.Addr)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), true)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "missing dataset url",
			mutate: func(c *Config) { c.Dataset.URL = "" },
		},
		{
			name:   "broken http url",
			mutate: func(c *Config) { c.Dataset.URL = "http://bad host/x" },
		},
		{
			name:   "timeout too short",
			mutate: func(c *Config) { c.Dataset.Timeout = 100 * time.Millisecond },
		},
		{
			name:   "missing server addr",
			mutate: func(c *Config) { c.Server.Addr = "" },
		},
		{
			name:   "invalid padding",
			mutate: func(c *Config) { c.Chart.Padding = 1.5 },
		},
		{
			name:   "unknown zero capacity policy",
			mutate: func(c *Config) { c.Chart.ZeroCapacity = "hide" },
		},
		{
			name:   "unknown colour",
			mutate: func(c *Config) { c.Chart.RemainingColor = "blurple" },
		},
		{
			name:   "relative metrics path",
			mutate: func(c *Config) { c.Metrics.Path = "metrics" },
		},
		{
			name:   "invalid log level",
			mutate: func(c *Config) { c.Logging.Level = "trace" },
		},
		{
			name:   "invalid log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() expected error")
			}
		})
	}
}
