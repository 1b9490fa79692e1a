package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stablecam/stablecam/internal/detect"
	"github.com/stablecam/stablecam/internal/events"
	"github.com/stablecam/stablecam/internal/infrastructure/config"
	"github.com/stablecam/stablecam/internal/infrastructure/logging"
	"github.com/stablecam/stablecam/internal/monitor"
	"github.com/stablecam/stablecam/internal/registry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// configPath is the value of the persistent --config flag.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "stablecam",
	Short: "Stable identity for USB cameras",
	Long: `StableCam assigns durable identifiers to USB cameras so applications
can refer to "stable-cam-001" instead of the enumeration-order index that
changes between reboots and replugs.

Identity is resolved from hardware: serial number first, then physical
port path, then a digest of vendor/product metadata.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
}

// Execute runs the root command, reporting failure via the exit code.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config.yaml (default: $STABLECAM_CONFIG, else built-in defaults)")
}

// loadConfig resolves configuration for a command.
//
// Resolution order: --config flag, then the STABLECAM_CONFIG environment
// variable, then built-in defaults with environment overrides so one-shot
// commands work without any setup.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("STABLECAM_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newManager builds the registry, platform detector, event bus and monitor
// manager shared by every command.
func newManager(cfg *config.Config, log *logging.Logger) (*monitor.Manager, *events.Bus, error) {
	store, err := registry.New(registry.Config{Path: cfg.Registry.Path})
	if err != nil {
		return nil, nil, fmt.Errorf("opening registry: %w", err)
	}
	store.SetLogger(log)

	bus := events.NewBus()
	bus.SetLogger(log)

	det := detect.New()
	if l, ok := det.(interface{ SetLogger(detect.Logger) }); ok {
		l.SetLogger(log)
	}

	mgr := monitor.New(store, det, bus, monitor.Config{PollInterval: cfg.PollInterval()})
	mgr.SetLogger(log)

	return mgr, bus, nil
}
