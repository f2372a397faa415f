// Package config defines service configuration and its loading layers.
package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	SecondaryQcmThreshold       int `koanf:"secondary_qcm_threshold"`
	HigherQcmThreshold          int `koanf:"higher_qcm_threshold"`
	SecondaryTeamSelectionCount int `koanf:"secondary_team_selection_count"`
	HigherTeamSelectionCount    int `koanf:"higher_team_selection_count"`

	// TieBreak orders teams with equal interview scores: input_order or qcm_then_id.
	TieBreak string `koanf:"tie_break"`

	ApplicationYear int    `koanf:"application_year"`
	ContactEmail    string `koanf:"contact_email"`

	// DedupeSize bounds the registration idempotency-key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RecomputeQueueSize bounds pending recompute jobs.
	RecomputeQueueSize int `koanf:"recompute_queue_size"`

	// RecomputeWorkers sets the number of recompute workers.
	RecomputeWorkers int `koanf:"recompute_workers"`

	// GenderBonus is the points bonus for a team with a female member.
	GenderBonus float64 `koanf:"gender_bonus"`

	// SkillPoints is awarded per declared skill.
	SkillPoints float64 `koanf:"skill_points"`

	// Metrics naming and latency histogram buckets (milliseconds).
	MetricsNamespace string    `koanf:"metrics_namespace"`
	MetricsSubsystem string    `koanf:"metrics_subsystem"`
	MetricsBuckets   []float64 `koanf:"metrics_buckets"`
}

var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New returns a Config holding the defaults.
func New() *Config {
	d := model.DefaultSettings()
	return &Config{
		LogLevel:                    "info",
		LogFormat:                   "text",
		Addr:                        ":9080",
		SecondaryQcmThreshold:       d.SecondaryQcmThreshold,
		HigherQcmThreshold:          d.HigherQcmThreshold,
		SecondaryTeamSelectionCount: d.SecondaryTeamSelectionCount,
		HigherTeamSelectionCount:    d.HigherTeamSelectionCount,
		TieBreak:                    string(ranking.TieBreakInputOrder),
		ApplicationYear:             d.ApplicationYear,
		ContactEmail:                d.ContactEmail,
		DedupeSize:                  50_000,
		RecomputeQueueSize:          64,
		RecomputeWorkers:            1,
		GenderBonus:                 5,
		SkillPoints:                 2,
		MetricsNamespace:            "qualify",
		MetricsSubsystem:            "selection",
	}
}

// Settings returns the selection settings carried by the config.
func (c *Config) Settings() model.Settings {
	return model.Settings{
		SecondaryQcmThreshold:       c.SecondaryQcmThreshold,
		HigherQcmThreshold:          c.HigherQcmThreshold,
		SecondaryTeamSelectionCount: c.SecondaryTeamSelectionCount,
		HigherTeamSelectionCount:    c.HigherTeamSelectionCount,
		ApplicationYear:             c.ApplicationYear,
		ContactEmail:                c.ContactEmail,
	}
}

// Validate checks the config for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: addr %q: %v", ErrInvalidConfig, c.Addr, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := ranking.ParseTieBreak(c.TieBreak); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.DedupeSize <= 0 || c.RecomputeQueueSize <= 0 || c.RecomputeWorkers <= 0 {
		return fmt.Errorf("%w: dedupe_size, recompute_queue_size and recompute_workers must be positive", ErrInvalidConfig)
	}
	if c.GenderBonus < 0 || c.SkillPoints < 0 {
		return fmt.Errorf("%w: gender_bonus and skill_points must not be negative", ErrInvalidConfig)
	}
	if !metricNamePart.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q", ErrInvalidConfig, c.MetricsNamespace)
	}
	if c.MetricsSubsystem != "" && !metricNamePart.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q", ErrInvalidConfig, c.MetricsSubsystem)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
