//go:build linux

package detect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/stablecam/stablecam/internal/device"
)

// videoNodePattern matches capture device nodes like "video0". Nodes with
// non-numeric suffixes (codecs, decoders) are not cameras.
var videoNodePattern = regexp.MustCompile(`^video(\d+)$`)

// linuxDetector enumerates cameras from /dev/video* nodes and extracts USB
// identity by walking the video4linux sysfs tree up to the owning USB device
// (the first ancestor directory carrying idVendor/idProduct).
//
// The device and sysfs roots are fields so tests can point the detector at a
// synthetic tree.
type linuxDetector struct {
	devRoot   string
	sysfsRoot string
	logger    Logger
}

// New returns the Linux camera detector.
func New() Detector {
	return &linuxDetector{
		devRoot:   "/dev",
		sysfsRoot: "/sys/class/video4linux",
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the detector.
func (d *linuxDetector) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

func (d *linuxDetector) PlatformName() string {
	return "linux"
}

// DetectCameras enumerates /dev/video* capture nodes in index order.
// Nodes whose hardware identity cannot be extracted are skipped with a
// warning; only a failure to list the device directory is an error.
func (d *linuxDetector) DetectCameras() ([]device.CameraDevice, error) {
	entries, err := os.ReadDir(d.devRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrDetectionFailed, d.devRoot, err)
	}

	indices := make([]int, 0, 4)
	for _, entry := range entries {
		m := videoNodePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	cameras := make([]device.CameraDevice, 0, len(indices))
	for _, idx := range indices {
		cam, err := d.readCamera(idx)
		if err != nil {
			d.logger.Warn("skipping video device", "index", idx, "error", err)
			continue
		}
		cameras = append(cameras, *cam)
	}

	return cameras, nil
}

// readCamera builds the detection snapshot for one video index from sysfs.
func (d *linuxDetector) readCamera(idx int) (*device.CameraDevice, error) {
	sysfsDev := filepath.Join(d.sysfsRoot, fmt.Sprintf("video%d", idx))

	usbDir, err := d.findUSBAncestor(sysfsDev)
	if err != nil {
		return nil, err
	}

	vendorID, err := readSysfsValue(filepath.Join(usbDir, "idVendor"))
	if err != nil {
		return nil, fmt.Errorf("reading idVendor: %w", err)
	}
	productID, err := readSysfsValue(filepath.Join(usbDir, "idProduct"))
	if err != nil {
		return nil, fmt.Errorf("reading idProduct: %w", err)
	}

	cam := &device.CameraDevice{
		SystemIndex: idx,
		VendorID:    strings.ToLower(vendorID),
		ProductID:   strings.ToLower(productID),
		PlatformData: map[string]any{
			"device_path": filepath.Join(d.devRoot, fmt.Sprintf("video%d", idx)),
			"subsystem":   "video4linux",
		},
	}

	// Serial is optional; many cheap cameras ship without one.
	if serial, err := readSysfsValue(filepath.Join(usbDir, "serial")); err == nil && serial != "" {
		cam.SerialNumber = &serial
	}

	// The USB device directory name is the physical port chain, e.g. "2-1.3".
	port := filepath.Base(usbDir)
	cam.PortPath = &port

	if uevent, err := readSysfsValue(filepath.Join(sysfsDev, "device", "uevent")); err == nil {
		if v := ueventValue(uevent, "DRIVER"); v != "" {
			cam.PlatformData["driver"] = v
		}
	}

	cam.Label = d.deviceLabel(sysfsDev, cam)

	return cam, nil
}

// findUSBAncestor resolves the video node's device link and walks up the
// sysfs tree to the first directory carrying USB identity files. Non-USB
// video devices (platform cameras, loopbacks) have no such ancestor.
func (d *linuxDetector) findUSBAncestor(sysfsDev string) (string, error) {
	deviceLink := filepath.Join(sysfsDev, "device")

	real, err := filepath.EvalSymlinks(deviceLink)
	if err != nil {
		// Synthetic trees in tests use a plain directory instead of a link.
		if _, statErr := os.Stat(deviceLink); statErr != nil {
			return "", fmt.Errorf("resolving device link: %w", err)
		}
		real = deviceLink
	}

	for dir := real; dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			return dir, nil
		}
	}
	return "", errors.New("no USB ancestor with idVendor/idProduct")
}

// deviceLabel reads the human-readable name from sysfs, falling back to a
// generic vendor:product label.
func (d *linuxDetector) deviceLabel(sysfsDev string, cam *device.CameraDevice) string {
	if name, err := readSysfsValue(filepath.Join(sysfsDev, "name")); err == nil && name != "" {
		return name
	}
	return fmt.Sprintf("USB Camera %s:%s", cam.VendorID, cam.ProductID)
}

// readSysfsValue reads a single-value sysfs attribute file.
func readSysfsValue(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ueventValue extracts a KEY=value entry from uevent file content.
func ueventValue(content, key string) string {
	for _, line := range strings.Split(content, "\n") {
		if v, ok := strings.CutPrefix(line, key+"="); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
