package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/core/ports/driving"
)

// Ensure PluginManager implements the interface.
var _ driving.PluginService = (*PluginManager)(nil)

// PluginManager exposes the control-plane operations over registered
// plugins: listing, health checks, schemas and store stats.
type PluginManager struct {
	registry driven.PluginRegistry
	config   driven.ConfigStore
	records  driven.RecordStore
	runs     driven.ImportRunStore
	auth     driving.AuthService
	model    string
}

// NewPluginManager creates the plugin control-plane service.
// model is the current embedding model version used for stats.
func NewPluginManager(
	registry driven.PluginRegistry,
	config driven.ConfigStore,
	records driven.RecordStore,
	runs driven.ImportRunStore,
	auth driving.AuthService,
	model string,
) *PluginManager {
	return &PluginManager{
		registry: registry,
		config:   config,
		records:  records,
		runs:     runs,
		auth:     auth,
		model:    model,
	}
}

// List returns the status of every registered plugin.
func (s *PluginManager) List(ctx context.Context) ([]domain.PluginStatus, error) {
	plugins := s.registry.All()
	statuses := make([]domain.PluginStatus, 0, len(plugins))

	for _, p := range plugins {
		status := domain.PluginStatus{
			Name:      p.Name(),
			Enabled:   s.config.GetBool("plugins." + p.Name() + ".enabled"),
			AuthState: domain.AuthStateAuthenticated,
		}

		if _, ok := p.(driven.AuthAwarePlugin); ok {
			status.RequiresAuth = true
			status.AuthState = s.auth.State(ctx, p.Name())
		}

		if runs, err := s.runs.List(ctx, p.Name(), 1); err == nil && len(runs) > 0 {
			status.LastRun = &runs[0]
		}

		statuses = append(statuses, status)
	}
	return statuses, nil
}

// TestConnection invokes the named plugin's connection check.
func (s *PluginManager) TestConnection(ctx context.Context, pluginName string) error {
	p, err := s.registry.Get(pluginName)
	if err != nil {
		return err
	}
	if err := p.TestConnection(ctx); err != nil {
		return fmt.Errorf("test %s: %w", pluginName, err)
	}
	return nil
}

// Schema returns the plugin's declared configuration options.
func (s *PluginManager) Schema(_ context.Context, pluginName string) (domain.ConfigSchema, error) {
	p, err := s.registry.Get(pluginName)
	if err != nil {
		return nil, err
	}
	return p.ConfigSchema(), nil
}

// Stats summarises the record store.
func (s *PluginManager) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.records.Stats(ctx, s.model)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Stats{RecordsByPlugin: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("%w: stats: %w", domain.ErrPersistence, err)
	}
	return stats, nil
}
