// Package repository defines the team store interface and an in-memory
// implementation.
package repository

import (
	"context"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	"github.com/okian/qualify/internal/domain/types"
)

// Store persists team records. Implementations return copies; callers never
// share memory with the store.
type Store interface {
	// Create inserts a new team, assigning an id when empty. Returns the
	// stored record with Version 1.
	Create(ctx context.Context, team model.Team) (model.Team, error)

	// Get returns the team with id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Team, error)

	// List returns matching teams in insertion order.
	List(ctx context.Context, filter types.Filter) ([]model.Team, error)

	// Update replaces a team if its stored version equals expectedVersion,
	// otherwise it fails with ErrVersionConflict. expectedVersion 0 skips
	// the check (last write wins).
	Update(ctx context.Context, team model.Team, expectedVersion int64) (model.Team, error)

	// ApplyDerived overwrites qualification, rank and decision of the listed
	// teams in one step. Unknown ids are skipped and counted out of the
	// returned total.
	ApplyDerived(ctx context.Context, updates []ranking.TeamUpdate) (int, error)

	// Count returns the number of stored teams.
	Count(ctx context.Context) int
}
