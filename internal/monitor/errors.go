package monitor

import "errors"

// Domain errors for the monitor package.
var (
	// ErrAlreadyRunning is returned when Run is called while the
	// reconciliation loop is active.
	ErrAlreadyRunning = errors.New("monitor: already running")

	// ErrNotRunning is returned when Stop is called while the loop is idle.
	ErrNotRunning = errors.New("monitor: not running")
)
