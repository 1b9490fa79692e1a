//go:build darwin

package detect

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/stablecam/stablecam/internal/device"
)

// darwinDetector enumerates cameras by parsing the JSON output of
// system_profiler's USB data type and filtering for video-class devices.
type darwinDetector struct {
	logger Logger

	// runProfiler is swapped out in tests to avoid invoking the real tool.
	runProfiler func() ([]byte, error)
}

// New returns the macOS camera detector.
func New() Detector {
	return &darwinDetector{
		logger: noopLogger{},
		runProfiler: func() ([]byte, error) {
			return exec.Command("system_profiler", "SPUSBDataType", "-json").Output()
		},
	}
}

// SetLogger sets the logger for the detector.
func (d *darwinDetector) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

func (d *darwinDetector) PlatformName() string {
	return "darwin"
}

// usbItem mirrors the fields of interest in system_profiler's USB tree.
// Hubs nest further items, so the walk is recursive.
type usbItem struct {
	Name         string    `json:"_name"`
	VendorID     string    `json:"vendor_id"`
	ProductID    string    `json:"product_id"`
	SerialNum    string    `json:"serial_num"`
	LocationID   string    `json:"location_id"`
	Manufacturer string    `json:"manufacturer"`
	Items        []usbItem `json:"_items"`
}

type profilerReport struct {
	SPUSBDataType []usbItem `json:"SPUSBDataType"`
}

// DetectCameras parses the USB device tree and returns every device that
// looks like a camera. System indices are assigned in tree order, matching
// the order AVFoundation exposes capture devices.
func (d *darwinDetector) DetectCameras() ([]device.CameraDevice, error) {
	out, err := d.runProfiler()
	if err != nil {
		return nil, fmt.Errorf("%w: running system_profiler: %w", ErrDetectionFailed, err)
	}

	var report profilerReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Errorf("%w: parsing system_profiler output: %w", ErrDetectionFailed, err)
	}

	var cameras []device.CameraDevice
	idx := 0
	var walk func(items []usbItem)
	walk = func(items []usbItem) {
		for _, item := range items {
			if isCameraItem(item) {
				cam, err := d.cameraFromItem(idx, item)
				if err != nil {
					d.logger.Warn("skipping USB device", "name", item.Name, "error", err)
				} else {
					cameras = append(cameras, *cam)
					idx++
				}
			}
			walk(item.Items)
		}
	}
	walk(report.SPUSBDataType)

	return cameras, nil
}

// isCameraItem applies a name heuristic: system_profiler exposes no USB
// class codes, so camera-like product names are the only signal available.
func isCameraItem(item usbItem) bool {
	name := strings.ToLower(item.Name)
	for _, marker := range []string{"camera", "webcam", "facetime", "isight"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// cameraFromItem converts a profiler USB item into a detection snapshot.
// Vendor and product IDs arrive as "0x046d"-style strings.
func (d *darwinDetector) cameraFromItem(idx int, item usbItem) (*device.CameraDevice, error) {
	vendorID, err := parseHexID(item.VendorID)
	if err != nil {
		return nil, fmt.Errorf("vendor id %q: %w", item.VendorID, err)
	}
	productID, err := parseHexID(item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product id %q: %w", item.ProductID, err)
	}

	cam := &device.CameraDevice{
		SystemIndex: idx,
		VendorID:    vendorID,
		ProductID:   productID,
		Label:       item.Name,
		PlatformData: map[string]any{
			"subsystem": "usb",
		},
	}
	if item.Manufacturer != "" {
		cam.PlatformData["manufacturer"] = item.Manufacturer
	}

	if serial := strings.TrimSpace(item.SerialNum); serial != "" {
		cam.SerialNumber = &serial
	}

	// The location ID encodes the physical USB topology, e.g.
	// "0x14100000 / 2". It is the closest macOS analogue to a port path.
	if loc := strings.TrimSpace(item.LocationID); loc != "" {
		port := strings.Fields(loc)[0]
		cam.PortPath = &port
	}

	return cam, nil
}

// parseHexID normalises a profiler hex ID ("0x046d", sometimes with a
// trailing vendor name) to the four lowercase hex digits used everywhere
// else in the system.
func parseHexID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != 4 {
		return "", fmt.Errorf("expected 4 hex digits, got %q", s)
	}
	return s, nil
}
