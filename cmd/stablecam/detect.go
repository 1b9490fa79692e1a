package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stablecam/stablecam/internal/detect"
	"github.com/stablecam/stablecam/internal/device"
)

var detectFormat string

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "List cameras currently connected to this machine",
	Long: `Detect scans the host for connected USB cameras and prints what it
finds, without touching the registry. Use it to check what StableCam can
see before registering.`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	det := detect.New()
	cameras, err := det.DetectCameras()
	if err != nil {
		return fmt.Errorf("detecting cameras: %w", err)
	}

	switch detectFormat {
	case "json":
		return printJSON(cameras)
	case "table":
		printCameraTable(cameras)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table or json)", detectFormat)
	}
}

// printCameraTable renders detected cameras as an aligned table.
func printCameraTable(cameras []device.CameraDevice) {
	if len(cameras) == 0 {
		fmt.Println("No cameras detected.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tLABEL\tVID:PID\tSERIAL\tPORT")
	for _, cam := range cameras {
		fmt.Fprintf(w, "%d\t%s\t%s:%s\t%s\t%s\n",
			cam.SystemIndex,
			cam.Label,
			cam.VendorID,
			cam.ProductID,
			strOrDash(cam.SerialNumber),
			strOrDash(cam.PortPath),
		)
	}
	w.Flush() //nolint:errcheck // Best-effort stdout flush
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// strOrDash renders an optional string field for table output.
func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
