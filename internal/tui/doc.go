// Package tui provides the interactive terminal dashboard for the monitor
// command.
//
// It renders a live table of registered cameras that refreshes as the
// reconciliation loop emits connect and disconnect events, and offers
// one-key registration of newly plugged-in cameras.
package tui
