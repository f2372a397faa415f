package model

import (
	"fmt"
	"strings"
)

// Status is a stage in the qualification pipeline.
type Status string

// Pipeline stages, in informational order.
const (
	StatusRegistered         Status = "registered"
	StatusQcmSubmitted       Status = "qcm_submitted"
	StatusQcmFailed          Status = "qcm_failed"
	StatusInterviewQualified Status = "interview_qualified"
	StatusInterviewCompleted Status = "interview_completed"
	StatusSelected           Status = "selected"
	StatusNotSelected        Status = "not_selected"
)

// Statuses lists every known status in pipeline order.
var Statuses = []Status{
	StatusRegistered,
	StatusQcmSubmitted,
	StatusQcmFailed,
	StatusInterviewQualified,
	StatusInterviewCompleted,
	StatusSelected,
	StatusNotSelected,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s accepts no further status change.
func (s Status) Terminal() bool {
	return s == StatusSelected || s == StatusNotSelected
}

// ParseStatus normalizes s into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return st, nil
}
