package events

import "errors"

// Domain errors for the events package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidEventType is returned when an event type is not recognised.
	ErrInvalidEventType = errors.New("events: invalid event type")

	// ErrNilCallback is returned when subscribing with a nil callback.
	ErrNilCallback = errors.New("events: callback must not be nil")

	// ErrUnknownSubscriber is returned when unsubscribing a handle that is
	// not currently registered for the given event type.
	ErrUnknownSubscriber = errors.New("events: unknown subscriber")
)
