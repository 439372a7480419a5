package driving

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// PluginService exposes the control-plane operations over configured
// plugins. Its HTTP transport is out of scope; the CLI and any future
// surface call these operations directly.
type PluginService interface {
	// List returns the status of every registered plugin.
	List(ctx context.Context) ([]domain.PluginStatus, error)

	// TestConnection invokes the named plugin's connection check.
	TestConnection(ctx context.Context, pluginName string) error

	// Schema returns the plugin's declared configuration options.
	Schema(ctx context.Context, pluginName string) (domain.ConfigSchema, error)

	// Stats summarises the record store.
	Stats(ctx context.Context) (*domain.Stats, error)
}
