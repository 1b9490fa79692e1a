package history

import "errors"

// ErrInvalidLimit is returned when a query limit is not positive.
var ErrInvalidLimit = errors.New("history: limit must be positive")
