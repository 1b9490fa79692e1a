//go:build windows

package detect

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/stablecam/stablecam/internal/device"
)

// pnpCameraQuery lists imaging and camera class PnP entities as JSON.
// -Depth keeps the output flat; ConvertTo-Json defaults can truncate.
const pnpCameraQuery = `Get-CimInstance Win32_PnPEntity | ` +
	`Where-Object { $_.PNPClass -eq 'Camera' -or $_.PNPClass -eq 'Image' } | ` +
	`Select-Object Name, DeviceID, Manufacturer, PNPClass | ConvertTo-Json -Depth 3`

// pnpIDPattern extracts vendor and product IDs from a PnP device ID like
// "USB\VID_046D&PID_085E\ABC123".
var pnpIDPattern = regexp.MustCompile(`VID_([0-9A-Fa-f]{4})&PID_([0-9A-Fa-f]{4})`)

// windowsDetector enumerates cameras through PowerShell CIM queries against
// the PnP device tree.
type windowsDetector struct {
	logger Logger

	// runQuery is swapped out in tests to avoid invoking PowerShell.
	runQuery func() ([]byte, error)
}

// New returns the Windows camera detector.
func New() Detector {
	return &windowsDetector{
		logger: noopLogger{},
		runQuery: func() ([]byte, error) {
			return exec.Command("powershell", "-NoProfile", "-Command", pnpCameraQuery).Output()
		},
	}
}

// SetLogger sets the logger for the detector.
func (d *windowsDetector) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

func (d *windowsDetector) PlatformName() string {
	return "windows"
}

// pnpEntity mirrors the selected Win32_PnPEntity fields.
type pnpEntity struct {
	Name         string `json:"Name"`
	DeviceID     string `json:"DeviceID"`
	Manufacturer string `json:"Manufacturer"`
	PNPClass     string `json:"PNPClass"`
}

// DetectCameras queries PnP camera entities and returns USB-attached ones.
// System indices are assigned in enumeration order.
func (d *windowsDetector) DetectCameras() ([]device.CameraDevice, error) {
	out, err := d.runQuery()
	if err != nil {
		return nil, fmt.Errorf("%w: running PowerShell query: %w", ErrDetectionFailed, err)
	}

	entities, err := parsePnPEntities(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDetectionFailed, err)
	}

	cameras := make([]device.CameraDevice, 0, len(entities))
	for _, ent := range entities {
		cam, err := d.cameraFromEntity(len(cameras), ent)
		if err != nil {
			d.logger.Warn("skipping PnP device", "name", ent.Name, "error", err)
			continue
		}
		cameras = append(cameras, *cam)
	}

	return cameras, nil
}

// parsePnPEntities handles ConvertTo-Json's shape quirk: a single result is
// emitted as a bare object, multiple results as an array.
func parsePnPEntities(out []byte) ([]pnpEntity, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var entities []pnpEntity
		if err := json.Unmarshal([]byte(trimmed), &entities); err != nil {
			return nil, fmt.Errorf("parsing PnP entity list: %w", err)
		}
		return entities, nil
	}

	var single pnpEntity
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil, fmt.Errorf("parsing PnP entity: %w", err)
	}
	return []pnpEntity{single}, nil
}

// cameraFromEntity converts a PnP entity into a detection snapshot.
// Entities without a USB VID/PID pair (integrated MIPI cameras, virtual
// devices) are rejected.
func (d *windowsDetector) cameraFromEntity(idx int, ent pnpEntity) (*device.CameraDevice, error) {
	m := pnpIDPattern.FindStringSubmatch(ent.DeviceID)
	if m == nil {
		return nil, fmt.Errorf("no USB VID/PID in device id %q", ent.DeviceID)
	}

	cam := &device.CameraDevice{
		SystemIndex: idx,
		VendorID:    strings.ToLower(m[1]),
		ProductID:   strings.ToLower(m[2]),
		Label:       ent.Name,
		PlatformData: map[string]any{
			"device_id": ent.DeviceID,
			"pnp_class": ent.PNPClass,
		},
	}
	if ent.Manufacturer != "" {
		cam.PlatformData["manufacturer"] = ent.Manufacturer
	}
	if cam.Label == "" {
		cam.Label = fmt.Sprintf("USB Camera %s:%s", cam.VendorID, cam.ProductID)
	}

	// The instance segment after the final backslash is the serial number
	// when the device reports one; Windows synthesises "&"-laden instance
	// paths for serial-less devices.
	if i := strings.LastIndex(ent.DeviceID, `\`); i >= 0 {
		instance := ent.DeviceID[i+1:]
		if instance != "" && !strings.Contains(instance, "&") {
			cam.SerialNumber = &instance
		}
	}

	return cam, nil
}
