package driving

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// Importer coordinates ingestion runs across plugins.
type Importer interface {
	// Run executes an orchestrated import for the given run context.
	// Plugins run sequentially; one plugin's failure never prevents the
	// next from running. Returns one finalised ImportRun per target
	// plugin, in execution order.
	Run(ctx context.Context, rc domain.RunContext) ([]domain.ImportRun, error)

	// Runs returns the run log, newest first, optionally filtered to one
	// plugin.
	Runs(ctx context.Context, pluginName string, limit int) ([]domain.ImportRun, error)
}
