package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stablecam/stablecam/internal/infrastructure/config"
	"github.com/stablecam/stablecam/internal/infrastructure/logging"
	"github.com/stablecam/stablecam/internal/monitor"
)

// TestLoadConfig_Defaults verifies config resolution falls back to built-in
// defaults when neither the flag nor the environment names a file.
func TestLoadConfig_Defaults(t *testing.T) {
	originalEnv := os.Getenv("STABLECAM_CONFIG")
	defer os.Setenv("STABLECAM_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	os.Unsetenv("STABLECAM_CONFIG") //nolint:errcheck // test setup
	configPath = ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Monitor.PollIntervalMS != 2000 {
		t.Errorf("poll interval = %d, want default 2000", cfg.Monitor.PollIntervalMS)
	}
	if cfg.API.Port != 8875 {
		t.Errorf("api port = %d, want default 8875", cfg.API.Port)
	}
}

// TestLoadConfig_MissingFile verifies an explicit config path must exist.
func TestLoadConfig_MissingFile(t *testing.T) {
	configPath = "/nonexistent/path/config.yaml"
	defer func() { configPath = "" }()

	if _, err := loadConfig(); err == nil {
		t.Fatal("loadConfig() should fail for a nonexistent explicit path")
	}
}

// TestLoadConfig_EnvFile verifies STABLECAM_CONFIG selects the config file.
func TestLoadConfig_EnvFile(t *testing.T) {
	originalEnv := os.Getenv("STABLECAM_CONFIG")
	defer os.Setenv("STABLECAM_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
registry:
  path: /tmp/stablecam-test/registry.json

monitor:
  poll_interval_ms: 500

logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	os.Setenv("STABLECAM_CONFIG", path) //nolint:errcheck // test setup
	configPath = ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Monitor.PollIntervalMS != 500 {
		t.Errorf("poll interval = %d, want 500", cfg.Monitor.PollIntervalMS)
	}
	if cfg.Registry.Path != "/tmp/stablecam-test/registry.json" {
		t.Errorf("registry path = %q", cfg.Registry.Path)
	}
}

// TestNewManager verifies the shared construction path wires a working manager.
func TestNewManager(t *testing.T) {
	cfg, err := loadConfigForTest(t)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	log := logging.New(cfg.Logging, "test")
	mgr, bus, err := newManager(cfg, log)
	if err != nil {
		t.Fatalf("newManager() error = %v", err)
	}
	if mgr == nil || bus == nil {
		t.Fatal("newManager() returned nil components")
	}
	if mgr.State() != monitor.StateIdle {
		t.Errorf("manager state = %q, want idle", mgr.State())
	}
}

// loadConfigForTest returns defaults pointed at a temp registry.
func loadConfigForTest(t *testing.T) (*config.Config, error) {
	t.Helper()
	configPath = ""
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Registry.Path = filepath.Join(t.TempDir(), "registry.json")
	return cfg, nil
}
