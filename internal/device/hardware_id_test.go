package device

import (
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestGenerateHardwareIDSerialPriority(t *testing.T) {
	dev := CameraDevice{
		SystemIndex:  0,
		VendorID:     "046d",
		ProductID:    "085e",
		SerialNumber: strPtr("ABC123"),
		PortPath:     strPtr("1-1.4"),
		Label:        "Logitech BRIO",
	}

	got := dev.GenerateHardwareID()
	want := "serial:ABC123"
	if got != want {
		t.Errorf("GenerateHardwareID() = %q, want %q", got, want)
	}
}

func TestGenerateHardwareIDPortFallback(t *testing.T) {
	tests := []struct {
		name   string
		serial *string
		want   string
	}{
		{name: "nil serial", serial: nil, want: "vid-pid-port:046d:085e:1-1.4"},
		{name: "empty serial", serial: strPtr(""), want: "vid-pid-port:046d:085e:1-1.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := CameraDevice{
				VendorID:     "046d",
				ProductID:    "085e",
				SerialNumber: tt.serial,
				PortPath:     strPtr("1-1.4"),
				Label:        "Logitech BRIO",
			}
			if got := dev.GenerateHardwareID(); got != tt.want {
				t.Errorf("GenerateHardwareID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateHardwareIDHashFallback(t *testing.T) {
	dev := CameraDevice{
		VendorID:  "1908",
		ProductID: "2311",
		Label:     "Generic Webcam",
		PlatformData: map[string]any{
			"driver": "uvcvideo",
			"bus":    "usb",
		},
	}

	got := dev.GenerateHardwareID()
	if !strings.HasPrefix(got, "vid-pid-hash:1908:2311:") {
		t.Fatalf("GenerateHardwareID() = %q, want vid-pid-hash prefix", got)
	}

	// The digest must be stable across repeated calls; the original
	// time-seeded behaviour regenerated a new identity every call.
	for i := 0; i < 10; i++ {
		if again := dev.GenerateHardwareID(); again != got {
			t.Fatalf("GenerateHardwareID() not deterministic: %q != %q", again, got)
		}
	}
}

func TestGenerateHardwareIDHashIgnoresPlatformData(t *testing.T) {
	// Platform data holds OS-assigned values like Windows PnP instance
	// paths, which are port-dependent for serial-less cameras. The same
	// physical camera must keep its fingerprint when only those change.
	here := CameraDevice{
		VendorID:  "046d",
		ProductID: "085e",
		Label:     "Logitech BRIO",
		PlatformData: map[string]any{
			"device_id": `USB\VID_046D&PID_085E\5&2D0A3E1B&0&7`,
		},
	}
	elsewhere := here
	elsewhere.PlatformData = map[string]any{
		"device_id": `USB\VID_046D&PID_085E\6&1F8C44A2&0&2`,
	}

	if here.GenerateHardwareID() != elsewhere.GenerateHardwareID() {
		t.Errorf("hash fingerprint forked on platform data change: %q != %q",
			here.GenerateHardwareID(), elsewhere.GenerateHardwareID())
	}
}

func TestGenerateHardwareIDStableAcrossVolatileFields(t *testing.T) {
	base := CameraDevice{
		SystemIndex:  0,
		VendorID:     "046d",
		ProductID:    "085e",
		SerialNumber: strPtr("ABC123"),
		PortPath:     strPtr("1-1.4"),
		Label:        "Logitech BRIO",
	}
	moved := base
	moved.SystemIndex = 3
	moved.PortPath = strPtr("2-1.1")

	if base.GenerateHardwareID() != moved.GenerateHardwareID() {
		t.Errorf("serial-based fingerprint changed across system index / port move: %q != %q",
			base.GenerateHardwareID(), moved.GenerateHardwareID())
	}
}

func TestMatchesHardwareID(t *testing.T) {
	dev := CameraDevice{
		VendorID:     "046d",
		ProductID:    "085e",
		SerialNumber: strPtr("ABC123"),
		Label:        "Logitech BRIO",
	}

	if !dev.MatchesHardwareID("serial:ABC123") {
		t.Error("MatchesHardwareID() = false for own fingerprint")
	}
	if dev.MatchesHardwareID("serial:abc123") {
		t.Error("MatchesHardwareID() matched a differently-cased fingerprint; identity must be exact")
	}
	if dev.MatchesHardwareID("") {
		t.Error("MatchesHardwareID() matched an empty fingerprint")
	}
}

func TestGenerateStableID(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]struct{}
		want     string
	}{
		{
			name:     "empty registry",
			existing: map[string]struct{}{},
			want:     "stable-cam-001",
		},
		{
			name: "sequential allocation",
			existing: map[string]struct{}{
				"stable-cam-001": {},
				"stable-cam-002": {},
			},
			want: "stable-cam-003",
		},
		{
			name: "fills gap left by explicit deletion",
			existing: map[string]struct{}{
				"stable-cam-001": {},
				"stable-cam-003": {},
			},
			want: "stable-cam-002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateStableID(tt.existing); got != tt.want {
				t.Errorf("GenerateStableID() = %q, want %q", got, tt.want)
			}
		})
	}
}
