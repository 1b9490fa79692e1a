package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
	"github.com/stablecam/stablecam/internal/infrastructure/database"
	_ "github.com/stablecam/stablecam/migrations" // Register embedded migrations
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return NewStore(db)
}

func testRecord(stableID string, status device.Status) *device.RegisteredDevice {
	return &device.RegisteredDevice{
		StableID: stableID,
		DeviceInfo: device.CameraDevice{
			VendorID:  "046d",
			ProductID: "085e",
			Label:     "Logitech BRIO",
		},
		Status:       status,
		RegisteredAt: time.Now().UTC(),
	}
}

func TestRecordAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, events.TypeConnect, testRecord("stable-cam-001", device.StatusConnected)); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if err := s.Record(ctx, events.TypeDisconnect, testRecord("stable-cam-001", device.StatusDisconnected)); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if err := s.Record(ctx, events.TypeConnect, testRecord("stable-cam-002", device.StatusConnected)); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	got, err := s.ForDevice(ctx, "stable-cam-001", 10)
	if err != nil {
		t.Fatalf("ForDevice() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ForDevice() returned %d events, want 2", len(got))
	}
	// Newest first: the disconnect was recorded last.
	if got[0].EventType != events.TypeDisconnect {
		t.Errorf("newest event = %s, want on_disconnect", got[0].EventType)
	}
	if got[0].Label != "Logitech BRIO" || got[0].VendorID != "046d" {
		t.Errorf("event snapshot fields = %q %q", got[0].Label, got[0].VendorID)
	}

	all, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Recent() returned %d events, want 3", len(all))
	}
}

func TestQueryLimits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, events.TypeConnect, testRecord("stable-cam-001", device.StatusConnected)); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	got, err := s.ForDevice(ctx, "stable-cam-001", 2)
	if err != nil {
		t.Fatalf("ForDevice() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ForDevice(limit=2) returned %d events", len(got))
	}

	if _, err := s.ForDevice(ctx, "stable-cam-001", 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("ForDevice(limit=0) error = %v, want ErrInvalidLimit", err)
	}
	if _, err := s.Recent(ctx, -1); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("Recent(limit=-1) error = %v, want ErrInvalidLimit", err)
	}
}

func TestForDeviceUnknownIsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ForDevice(context.Background(), "stable-cam-404", 10)
	if err != nil {
		t.Fatalf("ForDevice() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ForDevice(unknown) returned %d events, want 0", len(got))
	}
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// An old row, inserted directly to control its timestamp.
	old := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO connection_events
			(stable_id, event_type, status, label, vendor_id, product_id, occurred_at)
		VALUES ('stable-cam-001', 'on_connect', 'connected', 'Old Cam', '046d', '085e', ?)`,
		old,
	); err != nil {
		t.Fatalf("seeding old event: %v", err)
	}
	if err := s.Record(ctx, events.TypeConnect, testRecord("stable-cam-001", device.StatusConnected)); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	n, err := s.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() deleted %d rows, want 1", n)
	}

	remaining, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("%d events remain after prune, want 1", len(remaining))
	}

	// Zero retention disables pruning.
	if n, err := s.Prune(ctx, 0); err != nil || n != 0 {
		t.Errorf("Prune(0) = %d, %v; want 0, nil", n, err)
	}
}

func TestRecorderWritesBusEvents(t *testing.T) {
	s := newTestStore(t)
	bus := events.NewBus()

	rec := NewRecorder(s)
	if err := rec.Attach(bus); err != nil {
		t.Fatalf("Attach() error: %v", err)
	}

	bus.Emit(events.TypeConnect, testRecord("stable-cam-001", device.StatusConnected))       //nolint:errcheck
	bus.Emit(events.TypeStatusChange, testRecord("stable-cam-001", device.StatusConnected))  //nolint:errcheck
	bus.Emit(events.TypeDisconnect, testRecord("stable-cam-001", device.StatusDisconnected)) //nolint:errcheck

	got, err := s.ForDevice(context.Background(), "stable-cam-001", 10)
	if err != nil {
		t.Fatalf("ForDevice() error: %v", err)
	}
	// Status-change events are not recorded separately.
	if len(got) != 2 {
		t.Fatalf("recorded %d events, want 2", len(got))
	}

	rec.Detach(bus)
	bus.Emit(events.TypeConnect, testRecord("stable-cam-001", device.StatusConnected)) //nolint:errcheck

	got, err = s.ForDevice(context.Background(), "stable-cam-001", 10)
	if err != nil {
		t.Fatalf("ForDevice() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("recorded %d events after detach, want still 2", len(got))
	}
}
