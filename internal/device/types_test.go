package device

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusValid(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.Valid() {
			t.Errorf("Status %q reported invalid", s)
		}
	}

	invalid := []Status{"", "online", "CONNECTED", "unknown"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("Status %q reported valid", s)
		}
	}
}

func TestRegisteredDeviceDeepCopy(t *testing.T) {
	seen := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	original := RegisteredDevice{
		StableID: "stable-cam-001",
		DeviceInfo: CameraDevice{
			SystemIndex:  1,
			VendorID:     "046d",
			ProductID:    "085e",
			SerialNumber: strPtr("ABC123"),
			Label:        "Logitech BRIO",
			PlatformData: map[string]any{
				"driver": "uvcvideo",
				"nested": map[string]any{"bus": "usb"},
			},
		},
		Status:       StatusConnected,
		RegisteredAt: seen,
		LastSeen:     &seen,
	}

	cpy := original.DeepCopy()

	// Mutating the copy must not leak into the original.
	cpy.DeviceInfo.PlatformData["driver"] = "other"
	cpy.DeviceInfo.PlatformData["nested"].(map[string]any)["bus"] = "pci"
	later := seen.Add(time.Hour)
	cpy.LastSeen = &later
	cpy.Status = StatusDisconnected

	if original.DeviceInfo.PlatformData["driver"] != "uvcvideo" {
		t.Error("DeepCopy shares top-level platform data map")
	}
	if original.DeviceInfo.PlatformData["nested"].(map[string]any)["bus"] != "usb" {
		t.Error("DeepCopy shares nested platform data map")
	}
	if !original.LastSeen.Equal(seen) {
		t.Error("DeepCopy shares last seen timestamp")
	}
	if original.Status != StatusConnected {
		t.Error("DeepCopy shares status")
	}
}

func TestRegisteredDeviceJSONRoundTrip(t *testing.T) {
	registered := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	original := RegisteredDevice{
		StableID: "stable-cam-002",
		DeviceInfo: CameraDevice{
			SystemIndex:  2,
			VendorID:     "1908",
			ProductID:    "2311",
			SerialNumber: nil,
			PortPath:     strPtr("1-1.2"),
			Label:        "Generic Webcam",
			PlatformData: map[string]any{"driver": "uvcvideo"},
		},
		Status:       StatusDisconnected,
		RegisteredAt: registered,
		LastSeen:     nil,
	}

	data, err := json.Marshal(&original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded RegisteredDevice
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if decoded.StableID != original.StableID {
		t.Errorf("StableID = %q, want %q", decoded.StableID, original.StableID)
	}
	if decoded.Status != original.Status {
		t.Errorf("Status = %q, want %q", decoded.Status, original.Status)
	}
	if !decoded.RegisteredAt.Equal(original.RegisteredAt) {
		t.Errorf("RegisteredAt = %v, want %v", decoded.RegisteredAt, original.RegisteredAt)
	}
	if decoded.LastSeen != nil {
		t.Errorf("LastSeen = %v, want nil", decoded.LastSeen)
	}
	if decoded.DeviceInfo.SerialNumber != nil {
		t.Errorf("SerialNumber = %v, want nil", decoded.DeviceInfo.SerialNumber)
	}
	if decoded.DeviceInfo.PortPath == nil || *decoded.DeviceInfo.PortPath != "1-1.2" {
		t.Errorf("PortPath = %v, want \"1-1.2\"", decoded.DeviceInfo.PortPath)
	}
	if decoded.HardwareID() != original.HardwareID() {
		t.Errorf("fingerprint changed across round trip: %q != %q", decoded.HardwareID(), original.HardwareID())
	}
}

func TestIsConnected(t *testing.T) {
	dev := RegisteredDevice{Status: StatusConnected}
	if !dev.IsConnected() {
		t.Error("IsConnected() = false for connected device")
	}
	dev.Status = StatusError
	if dev.IsConnected() {
		t.Error("IsConnected() = true for errored device")
	}
}
