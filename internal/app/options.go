package service

import (
	"github.com/okian/qualify/internal/adapters/repository"
	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	"github.com/okian/qualify/internal/domain/scoring"
	"github.com/okian/qualify/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the team store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSettings sets the initial selection settings.
func WithSettings(settings model.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithTieBreak sets how equal interview scores are ordered.
func WithTieBreak(tb ranking.TieBreak) Option {
	return func(s *Service) {
		if tb != "" {
			s.tieBreak = tb
		}
	}
}

// WithCalculator sets the points calculator.
func WithCalculator(c *scoring.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calculator = c
		}
	}
}

// WithDedupeSize sets the size of the idempotency-key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRecomputeQueueSize sets the maximum number of pending recompute jobs.
func WithRecomputeQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRecomputeWorkers sets the number of recompute workers.
func WithRecomputeWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
