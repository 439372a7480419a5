package driven

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// ImportRunStore persists the import run log.
type ImportRunStore interface {
	// Create opens a new run row with status running.
	Create(ctx context.Context, run *domain.ImportRun) error

	// Finalize writes the run's terminal state. A run is finalised at
	// most once; finished rows are immutable.
	Finalize(ctx context.Context, run *domain.ImportRun) error

	// List returns runs ordered by StartedAt descending, optionally
	// filtered to one plugin. limit <= 0 means no limit.
	List(ctx context.Context, pluginName string, limit int) ([]domain.ImportRun, error)

	// LastSuccessful returns the most recent run with status success or
	// partial for a plugin, or domain.ErrNotFound.
	LastSuccessful(ctx context.Context, pluginName string) (*domain.ImportRun, error)

	// FailAbandoned marks every unfinished run as failed. Called once at
	// startup; abandoned runs are never resumed.
	FailAbandoned(ctx context.Context) (int, error)
}
