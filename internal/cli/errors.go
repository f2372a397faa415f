package cli

import "errors"

// Sentinel error kinds for this package.
var (
	ErrRoster       = errors.New("invalid roster")
	ErrRequest      = errors.New("request failed")
	ErrVerification = errors.New("verification failed")
)
