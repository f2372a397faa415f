// Package service wires the selection pipeline to storage, the recompute
// worker pool and metrics. It implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/qualify/internal/adapters/mq/queue"
	"github.com/okian/qualify/internal/adapters/mq/worker"
	"github.com/okian/qualify/internal/adapters/repository"
	"github.com/okian/qualify/internal/domain/dedupe"
	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	"github.com/okian/qualify/internal/domain/scoring"
	"github.com/okian/qualify/internal/domain/status"
	"github.com/okian/qualify/internal/domain/types"
	"github.com/okian/qualify/pkg/logger"
	"github.com/okian/qualify/pkg/metrics"
)

// Recompute triggers, used as metric labels and job tags.
const (
	TriggerInterview = "interview"
	TriggerBatch     = "batch"
	TriggerSettings  = "settings"
)

// recomputeHandler adapts the service to worker.Handler.
type recomputeHandler struct {
	svc *Service
}

func (h *recomputeHandler) Handle(ctx context.Context, job queue.Job) error {
	_, err := h.svc.recompute(ctx, job.Trigger)
	var be *ranking.BatchError
	if errors.As(err, &be) {
		// Partial batches are applied; failures were already logged.
		return nil
	}
	return err
}

// Service implements the API dependencies for the selection pipeline.
type Service struct {
	mu sync.RWMutex
	// writeMu serializes every write that reads then rewrites team state,
	// so rankings are always computed from a consistent snapshot.
	writeMu sync.Mutex

	store      repository.Store
	deduper    dedupe.Deduper
	calculator *scoring.Calculator
	jobs       queue.Queue
	pool       *worker.Pool

	settings    model.Settings
	tieBreak    ranking.TieBreak
	dedupeSize  int
	queueSize   int
	workerCount int

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		settings:    model.DefaultSettings(),
		tieBreak:    ranking.TieBreakInputOrder,
		dedupeSize:  50_000,
		queueSize:   64,
		workerCount: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.calculator == nil {
		s.calculator = scoring.NewCalculator()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start launches the recompute worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	s.logger.Info(ctx, "starting selection service...")

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobs, &recomputeHandler{svc: s})
	// Workers outlive the start request; Stop ends them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "selection service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("tieBreak", string(s.tieBreak)),
	)
	return nil
}

// Stop gracefully shuts down the worker pool.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	jobs, pool := s.jobs, s.pool
	s.mu.Unlock()

	// In-flight jobs read settings under s.mu, so wait without holding it.
	ctx := context.Background()
	s.logger.Info(ctx, "stopping selection service...")

	_ = jobs.Close()
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}

	s.logger.Info(ctx, "selection service stopped")
}

// Register creates a team in status Registered with no scores.
func (s *Service) Register(ctx context.Context, reg types.Registration) (model.Team, error) {
	name := strings.TrimSpace(reg.Name)
	if name == "" {
		return model.Team{}, fmt.Errorf("%w: team name required", model.ErrValidation)
	}
	if !reg.Category.Valid() {
		return model.Team{}, fmt.Errorf("%w: unknown category %q", model.ErrValidation, reg.Category)
	}

	team, err := s.store.Create(ctx, model.Team{
		Name:     name,
		School:   strings.TrimSpace(reg.School),
		Category: reg.Category,
		Status:   model.StatusRegistered,
		Members:  append([]model.Member(nil), reg.Members...),
		Skills:   reg.Skills,
	})
	if err != nil {
		return model.Team{}, err
	}

	metrics.RecordTeamRegistered()
	s.logger.Info(ctx, "team registered",
		logger.String("team", team.ID),
		logger.String("category", string(team.Category)),
	)
	return team, nil
}

// RegisterOnce registers a team at most once per idempotency key. A replayed
// key returns the team created by the first call and replayed=true. An empty
// key behaves like Register.
func (s *Service) RegisterOnce(ctx context.Context, key string, reg types.Registration) (team model.Team, replayed bool, err error) {
	if key == "" {
		team, err = s.Register(ctx, reg)
		return team, false, err
	}

	if id, seen := s.deduper.Claim(ctx, key); seen {
		metrics.RecordDuplicateSubmission()
		if id == "" {
			return model.Team{}, true, dedupe.ErrInFlight
		}
		s.logger.Debug(ctx, "duplicate registration", logger.String("key", key), logger.String("team", id))
		team, err = s.store.Get(ctx, id)
		return team, true, err
	}

	team, err = s.Register(ctx, reg)
	if err != nil {
		s.deduper.Release(ctx, key)
		return model.Team{}, false, err
	}
	s.deduper.Bind(ctx, key, team.ID)
	return team, false, nil
}

// Get returns one team.
func (s *Service) Get(ctx context.Context, id string) (model.Team, error) {
	return s.store.Get(ctx, id)
}

// List returns the teams matching filter in registration order.
func (s *Service) List(ctx context.Context, filter types.Filter) ([]model.Team, error) {
	return s.store.List(ctx, filter)
}

// Update applies changes to a team. version, when non-zero, must match the
// stored version or the call fails with repository.ErrVersionConflict. A new
// interview score re-ranks the team's category before returning.
func (s *Service) Update(ctx context.Context, id string, changes status.Changes, version int64) (model.Team, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Team{}, err
	}
	if version != 0 && version != current.Version {
		metrics.RecordRejectedUpdate(errorKind(repository.ErrVersionConflict))
		return model.Team{}, fmt.Errorf("%w: team %s is at version %d", repository.ErrVersionConflict, id, current.Version)
	}

	settings := s.Settings(ctx)
	out, err := status.New(settings.Thresholds()).Apply(&current, changes)
	if err != nil {
		metrics.RecordRejectedUpdate(errorKind(err))
		s.logger.Debug(ctx, "update rejected", logger.String("team", id), logger.Error(err))
		return model.Team{}, err
	}

	saved, err := s.store.Update(ctx, out.Team, current.Version)
	if err != nil {
		return model.Team{}, err
	}
	if out.Changed() {
		metrics.RecordStatusTransition(string(out.Previous), string(out.Status))
		s.logger.Info(ctx, "status changed",
			logger.String("team", id),
			logger.String("from", string(out.Previous)),
			logger.String("to", string(out.Status)),
		)
	}

	if !out.Rerank {
		return saved, nil
	}
	if err := s.rerank(ctx, saved.Category, settings); err != nil {
		return model.Team{}, err
	}
	return s.store.Get(ctx, id)
}

// rerank recomputes rank and decision for every interviewed team of c.
// Callers hold writeMu.
func (s *Service) rerank(ctx context.Context, c model.Category, settings model.Settings) error {
	start := time.Now()
	teams, err := s.store.List(ctx, types.Filter{Category: c})
	if err != nil {
		return err
	}
	ranks, err := ranking.Rank(teams, settings, ranking.WithTieBreak(s.tieBreak))
	if err != nil {
		return err
	}

	byID := make(map[string]*ranking.Update, len(ranks))
	for i := range ranks {
		byID[ranks[i].ID] = &ranks[i]
	}
	updates := make([]ranking.TeamUpdate, 0, len(teams))
	selected := 0
	for i := range teams {
		t := &teams[i]
		u := ranking.TeamUpdate{ID: t.ID, QcmQualified: t.QcmQualified}
		if r, ok := byID[t.ID]; ok {
			u.InterviewRank = model.IntPtr(r.InterviewRank)
			u.Decision = r.Decision
			if r.Decision == model.DecisionSelected {
				selected++
			}
		}
		updates = append(updates, u)
	}
	if _, err := s.store.ApplyDerived(ctx, updates); err != nil {
		return err
	}

	metrics.RecordRankingRun(TriggerInterview, float64(time.Since(start).Microseconds())/1000)
	metrics.UpdateSelectedTeams(string(c), selected)
	s.logger.Debug(ctx, "category re-ranked",
		logger.String("category", string(c)),
		logger.Int("ranked", len(ranks)),
		logger.Int("selected", selected),
	)
	return nil
}

// Points returns the composite points breakdown of one team.
func (s *Service) Points(ctx context.Context, id string) (scoring.Breakdown, error) {
	team, err := s.store.Get(ctx, id)
	if err != nil {
		return scoring.Breakdown{}, err
	}
	return s.calculator.Breakdown(&team), nil
}

// Standings returns the ranked teams of a category, best first.
func (s *Service) Standings(ctx context.Context, c model.Category) ([]types.Standing, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrValidation, c)
	}
	teams, err := s.store.List(ctx, types.Filter{Category: c})
	if err != nil {
		return nil, err
	}

	out := make([]types.Standing, 0, len(teams))
	for i := range teams {
		t := &teams[i]
		if t.InterviewRank == nil || t.InterviewScore == nil {
			continue
		}
		out = append(out, types.Standing{
			Rank:           *t.InterviewRank,
			TeamID:         t.ID,
			Name:           t.Name,
			Category:       t.Category,
			Status:         t.Status,
			InterviewScore: *t.InterviewScore,
			QcmScore:       t.QcmScore,
			Decision:       t.Decision,
			Points:         s.calculator.Points(t),
		})
	}
	slices.SortStableFunc(out, func(a, b types.Standing) int { return a.Rank - b.Rank })
	return out, nil
}

// Recompute re-derives qualification, rank and decision for every team.
// A *ranking.BatchError is returned alongside the applied batch when some
// teams could not be evaluated.
func (s *Service) Recompute(ctx context.Context) (ranking.Batch, error) {
	return s.recompute(ctx, TriggerBatch)
}

func (s *Service) recompute(ctx context.Context, trigger string) (ranking.Batch, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	teams, err := s.store.List(ctx, types.Filter{})
	if err != nil {
		return ranking.Batch{}, err
	}

	batch, err := ranking.Recompute(teams, s.Settings(ctx), ranking.WithTieBreak(s.tieBreak))
	var be *ranking.BatchError
	if err != nil && !errors.As(err, &be) {
		s.logger.Error(ctx, "recompute failed", logger.String("trigger", trigger), logger.Error(err))
		return ranking.Batch{}, err
	}

	applied, applyErr := s.store.ApplyDerived(ctx, batch.All())
	if applyErr != nil {
		return ranking.Batch{}, applyErr
	}

	selected := map[model.Category]int{}
	for _, r := range batch.Rankings {
		if r.Decision == model.DecisionSelected {
			selected[r.Category]++
		}
	}
	for _, c := range model.Categories {
		metrics.UpdateSelectedTeams(string(c), selected[c])
	}
	metrics.RecordRankingRun(trigger, float64(time.Since(start).Microseconds())/1000)
	metrics.RecordBatchFailures(len(batch.Failures))

	for _, f := range batch.Failures {
		s.logger.Warn(ctx, "team skipped by recompute", logger.String("team", f.ID), logger.String("reason", f.Reason))
	}
	s.logger.Info(ctx, "recompute done",
		logger.String("trigger", trigger),
		logger.Int("applied", applied),
		logger.Int("ranked", len(batch.Rankings)),
		logger.Int("failed", len(batch.Failures)),
	)
	return batch, err
}

// Settings returns the current settings snapshot.
func (s *Service) Settings(_ context.Context) model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings validates and installs a new settings snapshot, then
// schedules a full recompute. Without a running worker pool the recompute
// runs before returning.
func (s *Service) UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	if err := settings.Validate(); err != nil {
		return model.Settings{}, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	s.mu.Lock()
	s.settings = settings
	started, jobs := s.started, s.jobs
	s.mu.Unlock()

	s.logger.Info(ctx, "settings updated",
		logger.Int("secondaryThreshold", settings.SecondaryQcmThreshold),
		logger.Int("higherThreshold", settings.HigherQcmThreshold),
		logger.Int("secondaryQuota", settings.SecondaryTeamSelectionCount),
		logger.Int("higherQuota", settings.HigherTeamSelectionCount),
	)

	job := queue.Job{ID: uuid.NewString(), Trigger: TriggerSettings, RequestedAt: time.Now()}
	if started && jobs.Enqueue(ctx, job) {
		return settings, nil
	}

	s.logger.Warn(ctx, "recompute queue unavailable, recomputing inline", logger.String("job", job.ID))
	if _, err := s.recompute(ctx, TriggerSettings); err != nil {
		var be *ranking.BatchError
		if !errors.As(err, &be) {
			return settings, err
		}
	}
	return settings, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started, jobs := s.started, s.jobs
	s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.deduper.Size(),
		"tieBreak":    string(s.tieBreak),
	}

	teams, err := s.store.List(ctx, types.Filter{})
	if err != nil {
		return stats
	}
	byStatus := map[string]int{}
	byCategory := map[string]int{}
	gauge := map[[2]string]int{}
	for i := range teams {
		t := &teams[i]
		byStatus[string(t.Status)]++
		byCategory[string(t.Category)]++
		gauge[[2]string{string(t.Category), string(t.Status)}]++
	}
	stats["totalTeams"] = len(teams)
	stats["byStatus"] = byStatus
	stats["byCategory"] = byCategory
	metrics.UpdateTeamsByStatus(gauge)

	if started {
		n := jobs.Len(ctx)
		stats["queueLength"] = n
		metrics.UpdateRecomputeQueueSize(n)
	}
	return stats
}

// errorKind labels err for the rejected-updates metric.
func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, model.ErrConfiguration):
		return "configuration"
	case errors.Is(err, repository.ErrVersionConflict):
		return "conflict"
	default:
		return "internal"
	}
}
