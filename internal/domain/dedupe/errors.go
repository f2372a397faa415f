package dedupe

import "errors"

// ErrInFlight is returned when a claimed key has no team bound yet because
// the first request is still being processed.
var ErrInFlight = errors.New("duplicate submission in flight")
