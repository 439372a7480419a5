package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/core/ports/driving"
	"github.com/alcove-dev/alcove/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.Importer = (*Importer)(nil)

// Default retry policy for transient fetch failures.
const (
	defaultFetchAttempts = 3
	defaultRetryBackoff  = 500 * time.Millisecond
)

// Importer orchestrates ingestion runs.
// Plugins run sequentially within one invocation; two invocations that
// target the same plugin serialise on a per-plugin lock so concurrent
// fetch/dedup races cannot write overlapping records.
type Importer struct {
	registry   driven.PluginRegistry
	config     driven.ConfigStore
	runs       driven.ImportRunStore
	normalizer *Normalizer
	embedder   *Embedder // optional; nil disables post-run embedding

	fetchAttempts int
	retryBackoff  time.Duration

	mu          sync.Mutex
	pluginLocks map[string]*sync.Mutex
}

// NewImporter creates an import orchestrator.
// embedder may be nil; records are then left for an explicit backfill.
func NewImporter(
	registry driven.PluginRegistry,
	config driven.ConfigStore,
	runs driven.ImportRunStore,
	normalizer *Normalizer,
	embedder *Embedder,
) *Importer {
	return &Importer{
		registry:      registry,
		config:        config,
		runs:          runs,
		normalizer:    normalizer,
		embedder:      embedder,
		fetchAttempts: defaultFetchAttempts,
		retryBackoff:  defaultRetryBackoff,
		pluginLocks:   make(map[string]*sync.Mutex),
	}
}

// Run executes an orchestrated import for the given run context.
func (im *Importer) Run(ctx context.Context, rc domain.RunContext) ([]domain.ImportRun, error) {
	targets, err := im.resolveTargets(rc)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ImportRun, 0, len(targets))
	for _, plugin := range targets {
		run := im.importOne(ctx, plugin, rc)
		results = append(results, run)

		if ctx.Err() != nil {
			return results, ctx.Err()
		}
	}

	// Embedding runs after ingestion so a provider outage never blocks
	// imports; records stay searchable-pending until the next backfill.
	if im.embedder != nil {
		if _, err := im.embedder.Backfill(ctx); err != nil {
			logger.Warn("post-run embedding backfill: %v", err)
		}
	}

	return results, nil
}

// Runs returns the run log, newest first.
func (im *Importer) Runs(ctx context.Context, pluginName string, limit int) ([]domain.ImportRun, error) {
	return im.runs.List(ctx, pluginName, limit)
}

// resolveTargets expands the run context into the plugin execution list.
// An "all plugins" run skips disabled plugins; a run that names a plugin
// explicitly invokes it even when disabled.
func (im *Importer) resolveTargets(rc domain.RunContext) ([]driven.Plugin, error) {
	if len(rc.Plugins) == 0 {
		var targets []driven.Plugin
		for _, p := range im.registry.All() {
			if im.enabled(p.Name()) {
				targets = append(targets, p)
			}
		}
		return targets, nil
	}

	targets := make([]driven.Plugin, 0, len(rc.Plugins))
	for _, name := range rc.Plugins {
		p, err := im.registry.Get(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, p)
	}
	return targets, nil
}

// enabled reads the plugin's enabled flag from configuration.
func (im *Importer) enabled(pluginName string) bool {
	return im.config.GetBool("plugins." + pluginName + ".enabled")
}

// importOne runs one plugin's import end to end and returns the finalised
// run. Failures are converted into run status and error summary; they are
// never allowed to propagate and terminate the orchestrated batch.
func (im *Importer) importOne(ctx context.Context, plugin driven.Plugin, rc domain.RunContext) domain.ImportRun {
	lock := im.lockFor(plugin.Name())
	lock.Lock()
	defer lock.Unlock()

	run := domain.ImportRun{
		ID:         uuid.NewString(),
		PluginName: plugin.Name(),
		StartedAt:  time.Now().UTC(),
		Status:     domain.RunRunning,
	}
	if err := im.runs.Create(ctx, &run); err != nil {
		logger.Warn("open run for %s: %v", plugin.Name(), err)
		run.Finish(time.Now().UTC(), 0, fmt.Sprintf("open run log: %v", err))
		return run
	}

	itemErrors, fetchErr := im.execute(ctx, plugin, &run)

	summary := ""
	switch {
	case fetchErr != nil:
		summary = fetchErr.Error()
	case itemErrors > 0:
		summary = fmt.Sprintf("%d items failed validation", itemErrors)
	}
	run.Finish(time.Now().UTC(), itemErrors, summary)

	if err := im.runs.Finalize(ctx, &run); err != nil {
		logger.Warn("finalize run %s: %v", run.ID, err)
	}

	logger.Info("import %s: %s (%d fetched, %d inserted, %d duplicate)",
		run.PluginName, run.Status, run.ItemsFetched, run.ItemsInserted, run.ItemsSkippedDuplicate)
	return run
}

// execute validates config, applies the since hint, and drives the fetch
// with bounded retries for transient failures. Authentication failures are
// never retried within a run.
func (im *Importer) execute(ctx context.Context, plugin driven.Plugin, run *domain.ImportRun) (int, error) {
	cfg := domain.PluginConfig(im.config.PluginSection(plugin.Name()))
	if err := validateConfig(plugin.ConfigSchema(), cfg); err != nil {
		return 0, err
	}

	// Fail fast before any network I/O when auth is missing.
	if authed, ok := plugin.(driven.AuthAwarePlugin); ok && !authed.IsAuthenticated(ctx) {
		return 0, fmt.Errorf("%w: run `alcove auth %s`", domain.ErrAuthRequired, plugin.Name())
	}

	since := im.sinceHint(ctx, plugin.Name())

	var itemErrors int
	var err error
	for attempt := 0; attempt < im.fetchAttempts; attempt++ {
		if attempt > 0 {
			backoff := im.retryBackoff << (attempt - 1)
			logger.Debug("retrying %s fetch in %s (attempt %d/%d)",
				plugin.Name(), backoff, attempt+1, im.fetchAttempts)
			select {
			case <-ctx.Done():
				return itemErrors, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Re-fetching after a partial attempt is safe: already-inserted
		// items are skipped as duplicates.
		itemErrors, err = im.consume(ctx, plugin, cfg, since, run)
		if err == nil || !domain.IsTransient(err) {
			break
		}
	}
	return itemErrors, err
}

// sinceHint returns the started-at time of the plugin's last successful
// run, or zero when none exists.
func (im *Importer) sinceHint(ctx context.Context, pluginName string) time.Time {
	last, err := im.runs.LastSuccessful(ctx, pluginName)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("since hint for %s: %v", pluginName, err)
		}
		return time.Time{}
	}
	return last.StartedAt
}

// consume drains one fetch, piping each item through normalisation and
// dedup. Returns the count of items skipped for validation failures and
// the terminal fetch error, if any.
func (im *Importer) consume(
	ctx context.Context,
	plugin driven.Plugin,
	cfg domain.PluginConfig,
	since time.Time,
	run *domain.ImportRun,
) (int, error) {
	// Each attempt re-counts from zero; items inserted by an aborted
	// attempt show up again here as duplicates.
	run.ItemsFetched = 0
	run.ItemsInserted = 0
	run.ItemsSkippedDuplicate = 0

	itemsCh, errsCh := plugin.Fetch(ctx, cfg, since)

	itemErrors := 0
	for {
		select {
		case <-ctx.Done():
			return itemErrors, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				return itemErrors, fmt.Errorf("fetch %s: %w", plugin.Name(), err)
			}

		case raw, ok := <-itemsCh:
			if !ok {
				return itemErrors, nil
			}
			run.ItemsFetched++

			inserted, err := im.normalizer.Apply(ctx, plugin.Name(), raw, time.Now().UTC())
			switch {
			case err == nil && inserted:
				run.ItemsInserted++
			case err == nil:
				run.ItemsSkippedDuplicate++
			case errors.Is(err, domain.ErrValidation):
				itemErrors++
				logger.Debug("skipping item from %s: %v", plugin.Name(), err)
			default:
				// Store unavailable: abort this plugin's run.
				return itemErrors, err
			}
		}
	}
}

// validateConfig checks that every required option is present.
func validateConfig(schema domain.ConfigSchema, cfg domain.PluginConfig) error {
	for name, opt := range schema {
		if !opt.Required {
			continue
		}
		if cfg[name] == "" {
			return fmt.Errorf("%w: missing required config option %q", domain.ErrValidation, name)
		}
	}
	return nil
}

// lockFor returns the mutex serialising runs for one plugin.
func (im *Importer) lockFor(pluginName string) *sync.Mutex {
	im.mu.Lock()
	defer im.mu.Unlock()

	lock, ok := im.pluginLocks[pluginName]
	if !ok {
		lock = &sync.Mutex{}
		im.pluginLocks[pluginName] = lock
	}
	return lock
}
