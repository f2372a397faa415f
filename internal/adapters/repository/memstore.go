package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	"github.com/okian/qualify/internal/domain/types"
)

// MemoryStore is a Store kept in process memory. Insertion order is kept so
// that listings are stable; the ranking tie-break relies on it.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*model.Team
	order []string

	now   func() time.Time
	newID func() string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:  make(map[string]*model.Team),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Create(_ context.Context, team model.Team) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if team.ID == "" {
		team.ID = s.newID()
	}
	if _, ok := s.byID[team.ID]; ok {
		return model.Team{}, fmt.Errorf("%w: %s", ErrDuplicateID, team.ID)
	}
	now := s.now()
	stored := team.Clone()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.byID[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	return stored.Clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return model.Team{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, filter types.Filter) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Team, 0, len(s.order))
	for _, id := range s.order {
		t := s.byID[id]
		if filter.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, team model.Team, expectedVersion int64) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[team.ID]
	if !ok {
		return model.Team{}, fmt.Errorf("%w: %s", ErrNotFound, team.ID)
	}
	if expectedVersion != 0 && cur.Version != expectedVersion {
		return model.Team{}, fmt.Errorf("%w: %s has version %d, expected %d", ErrVersionConflict, team.ID, cur.Version, expectedVersion)
	}
	stored := team.Clone()
	stored.CreatedAt = cur.CreatedAt
	stored.Version = cur.Version + 1
	stored.UpdatedAt = s.now()
	s.byID[team.ID] = &stored
	return stored.Clone(), nil
}

func (s *MemoryStore) ApplyDerived(_ context.Context, updates []ranking.TeamUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	applied := 0
	for i := range updates {
		cur, ok := s.byID[updates[i].ID]
		if !ok {
			continue
		}
		next := updates[i].Apply(cur)
		next.Version = cur.Version + 1
		next.UpdatedAt = now
		s.byID[next.ID] = &next
		applied++
	}
	return applied, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
