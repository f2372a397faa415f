package model

import "fmt"

// Reference defaults used when no configuration overrides them.
const (
	DefaultSecondaryQcmThreshold = 60
	DefaultHigherQcmThreshold    = 70
	DefaultSecondarySelection    = 10
	DefaultHigherSelection       = 10
)

// Settings is an immutable configuration snapshot. The pipeline reads it and
// never mutates it.
type Settings struct {
	SecondaryQcmThreshold       int    `json:"secondary_qcm_threshold" yaml:"secondary_qcm_threshold" validate:"gte=0,lte=100"`
	HigherQcmThreshold          int    `json:"higher_qcm_threshold" yaml:"higher_qcm_threshold" validate:"gte=0,lte=100"`
	SecondaryTeamSelectionCount int    `json:"secondary_team_selection_count" yaml:"secondary_team_selection_count" validate:"gte=0"`
	HigherTeamSelectionCount    int    `json:"higher_team_selection_count" yaml:"higher_team_selection_count" validate:"gte=0"`
	ApplicationYear             int    `json:"application_year,omitempty" yaml:"application_year,omitempty" validate:"omitempty,gte=2000,lte=2100"`
	ContactEmail                string `json:"contact_email,omitempty" yaml:"contact_email,omitempty" validate:"omitempty,email"`
}

// DefaultSettings returns the reference thresholds and quotas.
func DefaultSettings() Settings {
	return Settings{
		SecondaryQcmThreshold:       DefaultSecondaryQcmThreshold,
		HigherQcmThreshold:          DefaultHigherQcmThreshold,
		SecondaryTeamSelectionCount: DefaultSecondarySelection,
		HigherTeamSelectionCount:    DefaultHigherSelection,
	}
}

// Thresholds maps each category to its QCM pass mark (percentage).
type Thresholds map[Category]int

// Thresholds extracts the per-category QCM thresholds.
func (s Settings) Thresholds() Thresholds {
	return Thresholds{
		CategorySecondary: s.SecondaryQcmThreshold,
		CategoryHigher:    s.HigherQcmThreshold,
	}
}

// Quota returns the selection count for c.
func (s Settings) Quota(c Category) (int, error) {
	var q int
	switch c {
	case CategorySecondary:
		q = s.SecondaryTeamSelectionCount
	case CategoryHigher:
		q = s.HigherTeamSelectionCount
	default:
		return 0, fmt.Errorf("%w: no quota for category %q", ErrConfiguration, c)
	}
	if q < 0 {
		return 0, fmt.Errorf("%w: negative quota %d for category %q", ErrConfiguration, q, c)
	}
	return q, nil
}

// Validate checks every threshold and quota.
func (s Settings) Validate() error {
	for c, t := range s.Thresholds() {
		if t < 0 || t > 100 {
			return fmt.Errorf("%w: threshold %d for category %q outside [0,100]", ErrConfiguration, t, c)
		}
	}
	for _, c := range Categories {
		if _, err := s.Quota(c); err != nil {
			return err
		}
	}
	return nil
}
