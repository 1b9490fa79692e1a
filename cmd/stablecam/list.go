package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/infrastructure/logging"
	"github.com/stablecam/stablecam/internal/registry"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered cameras",
	Long: `List prints every camera in the registry with its stable ID, current
status and hardware identity.

The JSON output is the registry's own device representation, so optional
fields (serial number, port path, last seen) appear as explicit nulls and
round-trip cleanly through scripts.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := registry.New(registry.Config{Path: cfg.Registry.Path})
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	store.SetLogger(logging.New(cfg.Logging, version))

	devices, err := store.GetAll()
	if err != nil {
		return fmt.Errorf("reading registry: %w", err)
	}

	switch listFormat {
	case "json":
		return printJSON(devices)
	case "table":
		printDeviceTable(devices)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table or json)", listFormat)
	}
}

// printDeviceTable renders registered cameras as an aligned table.
func printDeviceTable(devices []device.RegisteredDevice) {
	if len(devices) == 0 {
		fmt.Println("No cameras registered.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STABLE ID\tLABEL\tSTATUS\tVID:PID\tSERIAL\tLAST SEEN")
	for _, d := range devices {
		lastSeen := "never"
		if d.LastSeen != nil {
			lastSeen = d.LastSeen.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s:%s\t%s\t%s\n",
			d.StableID,
			d.DeviceInfo.Label,
			d.Status,
			d.DeviceInfo.VendorID,
			d.DeviceInfo.ProductID,
			strOrDash(d.DeviceInfo.SerialNumber),
			lastSeen,
		)
	}
	w.Flush() //nolint:errcheck // Best-effort stdout flush
}
