package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stablecam/stablecam/internal/infrastructure/config"
	"github.com/stablecam/stablecam/internal/infrastructure/logging"
	"github.com/stablecam/stablecam/internal/monitor"
	"github.com/stablecam/stablecam/internal/tui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch cameras live in an interactive dashboard",
	Long: `Monitor runs the reconciliation loop with an interactive terminal
dashboard showing each registered camera's status as it changes. Press r
to register newly plugged-in cameras and q to quit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The dashboard owns the terminal; keep log output out of its way.
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, version)

	mgr, bus, err := newManager(cfg, log)
	if err != nil {
		return err
	}

	if err := mgr.Run(cmd.Context()); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}
	defer func() {
		if stopErr := mgr.Stop(); stopErr != nil && !errors.Is(stopErr, monitor.ErrNotRunning) {
			log.Error("stopping monitor", "error", stopErr)
		}
	}()

	return tui.Run(mgr, bus)
}
