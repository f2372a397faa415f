package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("team not found")
	ErrVersionConflict = errors.New("team version conflict")
	ErrDuplicateID     = errors.New("team id already exists")
)
