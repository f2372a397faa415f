package model

import "errors"

// Sentinel error kinds shared by the selection pipeline. Callers match them
// with errors.Is; concrete messages are wrapped around them.
var (
	// ErrConfiguration marks an unknown category or a missing threshold/quota.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks input that lacks a prerequisite or is out of range.
	ErrValidation = errors.New("validation error")
	// ErrIllegalTransition marks a status change the pipeline does not allow.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrPartialBatch marks a batch where some teams could not be evaluated.
	ErrPartialBatch = errors.New("partial batch failure")
)
