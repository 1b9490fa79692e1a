//go:build linux

package detect

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// fakeSysfs builds a synthetic /dev + sysfs layout for one USB camera:
// a video node, a video4linux class entry whose device link resolves into
// an interface directory nested under the USB device directory.
type fakeSysfs struct {
	devRoot   string
	sysfsRoot string
	usbRoot   string
}

func newFakeSysfs(t *testing.T) *fakeSysfs {
	t.Helper()
	root := t.TempDir()
	fs := &fakeSysfs{
		devRoot:   filepath.Join(root, "dev"),
		sysfsRoot: filepath.Join(root, "sys", "class", "video4linux"),
		usbRoot:   filepath.Join(root, "sys", "devices", "usb"),
	}
	for _, dir := range []string{fs.devRoot, fs.sysfsRoot, fs.usbRoot} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			t.Fatalf("creating fake tree: %v", err)
		}
	}
	return fs
}

func (f *fakeSysfs) writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// addUSBCamera wires one camera at the given video index and USB port.
func (f *fakeSysfs) addUSBCamera(t *testing.T, index int, port, vendor, product, serial, name string) {
	t.Helper()

	f.writeFile(t, filepath.Join(f.devRoot, "video"+itoa(index)), "")

	usbDir := filepath.Join(f.usbRoot, port)
	f.writeFile(t, filepath.Join(usbDir, "idVendor"), vendor)
	f.writeFile(t, filepath.Join(usbDir, "idProduct"), product)
	if serial != "" {
		f.writeFile(t, filepath.Join(usbDir, "serial"), serial)
	}

	ifaceDir := filepath.Join(usbDir, port+":1.0")
	f.writeFile(t, filepath.Join(ifaceDir, "uevent"), "DRIVER=uvcvideo")

	classDir := filepath.Join(f.sysfsRoot, "video"+itoa(index))
	if err := os.MkdirAll(classDir, 0750); err != nil {
		t.Fatalf("creating class dir: %v", err)
	}
	if name != "" {
		f.writeFile(t, filepath.Join(classDir, "name"), name)
	}
	if err := os.Symlink(ifaceDir, filepath.Join(classDir, "device")); err != nil {
		t.Fatalf("linking device dir: %v", err)
	}
}

func (f *fakeSysfs) detector() *linuxDetector {
	return &linuxDetector{
		devRoot:   f.devRoot,
		sysfsRoot: f.sysfsRoot,
		logger:    noopLogger{},
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func TestDetectCamerasFromSysfs(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addUSBCamera(t, 0, "2-1.3", "046d", "085e", "ABC123", "Logitech BRIO")

	cameras, err := fs.detector().DetectCameras()
	if err != nil {
		t.Fatalf("DetectCameras() error: %v", err)
	}
	if len(cameras) != 1 {
		t.Fatalf("detected %d cameras, want 1", len(cameras))
	}

	cam := cameras[0]
	if cam.SystemIndex != 0 {
		t.Errorf("SystemIndex = %d, want 0", cam.SystemIndex)
	}
	if cam.VendorID != "046d" || cam.ProductID != "085e" {
		t.Errorf("IDs = %s:%s, want 046d:085e", cam.VendorID, cam.ProductID)
	}
	if cam.SerialNumber == nil || *cam.SerialNumber != "ABC123" {
		t.Errorf("SerialNumber = %v, want ABC123", cam.SerialNumber)
	}
	if cam.PortPath == nil || *cam.PortPath != "2-1.3" {
		t.Errorf("PortPath = %v, want 2-1.3", cam.PortPath)
	}
	if cam.Label != "Logitech BRIO" {
		t.Errorf("Label = %q, want Logitech BRIO", cam.Label)
	}
	if cam.PlatformData["driver"] != "uvcvideo" {
		t.Errorf("driver = %v, want uvcvideo", cam.PlatformData["driver"])
	}
	if err := cam.Validate(); err != nil {
		t.Errorf("detected camera fails validation: %v", err)
	}
}

func TestDetectCamerasSerialless(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addUSBCamera(t, 0, "1-1.4", "1908", "2311", "", "")

	cameras, err := fs.detector().DetectCameras()
	if err != nil {
		t.Fatalf("DetectCameras() error: %v", err)
	}
	if len(cameras) != 1 {
		t.Fatalf("detected %d cameras, want 1", len(cameras))
	}

	cam := cameras[0]
	if cam.SerialNumber != nil {
		t.Errorf("SerialNumber = %v, want nil", cam.SerialNumber)
	}
	if cam.Label != "USB Camera 1908:2311" {
		t.Errorf("fallback Label = %q", cam.Label)
	}
}

func TestDetectCamerasOrderedByIndex(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addUSBCamera(t, 2, "2-1.3", "046d", "085e", "SN2", "Cam Two")
	fs.addUSBCamera(t, 0, "1-1.1", "046d", "0825", "SN0", "Cam Zero")

	cameras, err := fs.detector().DetectCameras()
	if err != nil {
		t.Fatalf("DetectCameras() error: %v", err)
	}
	if len(cameras) != 2 {
		t.Fatalf("detected %d cameras, want 2", len(cameras))
	}
	if cameras[0].SystemIndex != 0 || cameras[1].SystemIndex != 2 {
		t.Errorf("order = [%d %d], want [0 2]", cameras[0].SystemIndex, cameras[1].SystemIndex)
	}
}

func TestDetectCamerasSkipsNonUSBAndCodecNodes(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addUSBCamera(t, 0, "2-1.3", "046d", "085e", "ABC123", "Logitech BRIO")

	// A codec node and a video node with no sysfs identity: both ignored.
	fs.writeFile(t, filepath.Join(fs.devRoot, "video-codec0"), "")
	fs.writeFile(t, filepath.Join(fs.devRoot, "video5"), "")

	cameras, err := fs.detector().DetectCameras()
	if err != nil {
		t.Fatalf("DetectCameras() error: %v", err)
	}
	if len(cameras) != 1 {
		t.Errorf("detected %d cameras, want 1", len(cameras))
	}
}

func TestDetectCamerasEmptySystem(t *testing.T) {
	fs := newFakeSysfs(t)

	cameras, err := fs.detector().DetectCameras()
	if err != nil {
		t.Fatalf("DetectCameras() error: %v", err)
	}
	if len(cameras) != 0 {
		t.Errorf("detected %d cameras on empty system, want 0", len(cameras))
	}
}
