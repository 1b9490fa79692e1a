package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stablecam/stablecam/internal/infrastructure/logging"
)

var registerIndex int

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a connected camera and assign it a stable ID",
	Long: `Register detects connected cameras and adds the one at the given
system index to the registry, assigning the lowest free stable ID.

Registering a camera that is already known is harmless: the existing
stable ID is printed and nothing changes.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().IntVar(&registerIndex, "index", 0, "system index of the camera to register")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging, version)
	mgr, _, err := newManager(cfg, log)
	if err != nil {
		return err
	}

	cameras, err := mgr.Detect()
	if err != nil {
		return fmt.Errorf("detecting cameras: %w", err)
	}

	for _, cam := range cameras {
		if cam.SystemIndex != registerIndex {
			continue
		}

		stableID, created, err := mgr.Register(cam)
		if err != nil {
			return fmt.Errorf("registering camera: %w", err)
		}

		if created {
			fmt.Printf("Registered %q as %s\n", cam.Label, stableID)
		} else {
			fmt.Printf("%q is already registered as %s\n", cam.Label, stableID)
		}
		return nil
	}

	return fmt.Errorf("no camera at system index %d (run 'stablecam detect' to see connected cameras)", registerIndex)
}
