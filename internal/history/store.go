package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
	"github.com/stablecam/stablecam/internal/infrastructure/database"
)

// Event is one recorded connection event.
type Event struct {
	ID         int64         `json:"id"`
	StableID   string        `json:"stable_id"`
	EventType  events.Type   `json:"event_type"`
	Status     device.Status `json:"status"`
	Label      string        `json:"label"`
	VendorID   string        `json:"vendor_id"`
	ProductID  string        `json:"product_id"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Store persists connection events to the history database.
//
// Thread Safety: safe for concurrent use; serialisation is delegated to the
// underlying SQLite connection.
type Store struct {
	db *database.DB
}

// NewStore creates a history store on an open, migrated database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Record appends one event row.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - eventType: The bus event kind that produced this row
//   - rec: The device snapshot carried by the event
//
// Returns:
//   - error: If the insert fails
func (s *Store) Record(ctx context.Context, eventType events.Type, rec *device.RegisteredDevice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connection_events
			(stable_id, event_type, status, label, vendor_id, product_id, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.StableID,
		string(eventType),
		string(rec.Status),
		rec.DeviceInfo.Label,
		rec.DeviceInfo.VendorID,
		rec.DeviceInfo.ProductID,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording connection event: %w", err)
	}
	return nil
}

// ForDevice returns the most recent events for one stable ID, newest first.
//
// Returns:
//   - []Event: Up to limit events
//   - error: ErrInvalidLimit or a query failure
func (s *Store) ForDevice(ctx context.Context, stableID string, limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, stable_id, event_type, status, label, vendor_id, product_id, occurred_at
		FROM connection_events
		WHERE stable_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
		stableID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying device history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	return scanEvents(rows)
}

// Recent returns the most recent events across all devices, newest first.
//
// Returns:
//   - []Event: Up to limit events
//   - error: ErrInvalidLimit or a query failure
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, stable_id, event_type, status, label, vendor_id, product_id, occurred_at
		FROM connection_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	return scanEvents(rows)
}

// Prune deletes events older than the retention period.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - retention: Maximum event age; non-positive disables pruning
//
// Returns:
//   - int64: Number of rows deleted
//   - error: If the delete fails
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM connection_events WHERE occurred_at < ?", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning connection events: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading pruned row count: %w", err)
	}
	return n, nil
}

// scanEvents reads event rows into Event values.
func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var (
			ev         Event
			eventType  string
			status     string
			occurredAt string
		)
		if err := rows.Scan(&ev.ID, &ev.StableID, &eventType, &status,
			&ev.Label, &ev.VendorID, &ev.ProductID, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		ev.EventType = events.Type(eventType)
		ev.Status = device.Status(status)
		ts, err := time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing event timestamp %q: %w", occurredAt, err)
		}
		ev.OccurredAt = ts
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return out, nil
}
