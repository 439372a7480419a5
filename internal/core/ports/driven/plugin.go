package driven

import (
	"context"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// Plugin fetches raw items from one external data source.
// Each source type (gmail, whoop, ticktick, fileupload, ...) implements
// this interface; new sources are added by registering a new implementation,
// not by runtime introspection.
type Plugin interface {
	// Name returns the plugin identifier, used as Record.SourcePlugin.
	Name() string

	// Fetch produces a lazy, finite sequence of source-native items.
	// The sequence is not restartable; a fresh call re-fetches from the
	// source. since is an advisory lookback hint (zero means no hint);
	// plugins may fetch a wider window because dedup makes overlap safe.
	// Both channels are closed when the fetch ends.
	Fetch(ctx context.Context, cfg domain.PluginConfig, since time.Time) (<-chan domain.RawItem, <-chan error)

	// TestConnection verifies the plugin can reach its source.
	// Used for UI health checks; never invoked by the orchestrator
	// during a scheduled run.
	TestConnection(ctx context.Context) error

	// ConfigSchema declares the recognised configuration options.
	// The core validates presence of required options before Fetch but
	// does not interpret their semantics.
	ConfigSchema() domain.ConfigSchema
}

// AuthAwarePlugin is implemented by plugins whose source requires
// authentication. Plugins for unauthenticated sources (file upload)
// skip this path entirely.
type AuthAwarePlugin interface {
	Plugin

	// IsAuthenticated reports whether usable credential state exists.
	// It must not perform network I/O.
	IsAuthenticated(ctx context.Context) bool
}

// PluginRegistry holds the fixed set of configured plugins.
type PluginRegistry interface {
	// Get returns the plugin with the given name.
	// Returns domain.ErrUnknownPlugin if not registered.
	Get(name string) (Plugin, error)

	// All returns every registered plugin in registration order.
	All() []Plugin

	// Register adds a plugin. Registering a duplicate name replaces the
	// earlier entry.
	Register(p Plugin)
}
