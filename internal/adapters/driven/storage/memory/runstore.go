package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.ImportRunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.ImportRunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs []domain.ImportRun
}

// NewRunStore creates an empty in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Create opens a new run row.
func (s *RunStore) Create(_ context.Context, run *domain.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

// Finalize writes the run's terminal state.
func (s *RunStore) Finalize(_ context.Context, run *domain.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.runs {
		if s.runs[i].ID == run.ID {
			if s.runs[i].Finished() {
				return domain.ErrInvalidInput
			}
			s.runs[i] = *run
			return nil
		}
	}
	return domain.ErrNotFound
}

// List returns runs ordered by StartedAt descending.
func (s *RunStore) List(_ context.Context, pluginName string, limit int) ([]domain.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ImportRun
	for _, run := range s.runs {
		if pluginName != "" && run.PluginName != pluginName {
			continue
		}
		out = append(out, run)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastSuccessful returns the most recent success or partial run.
func (s *RunStore) LastSuccessful(_ context.Context, pluginName string) (*domain.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.ImportRun
	for i := range s.runs {
		run := &s.runs[i]
		if run.PluginName != pluginName {
			continue
		}
		if run.Status != domain.RunSuccess && run.Status != domain.RunPartial {
			continue
		}
		if best == nil || run.StartedAt.After(best.StartedAt) {
			best = run
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	clone := *best
	return &clone, nil
}

// FailAbandoned marks every unfinished run as failed.
func (s *RunStore) FailAbandoned(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	count := 0
	for i := range s.runs {
		if s.runs[i].Finished() {
			continue
		}
		s.runs[i].Status = domain.RunFailed
		s.runs[i].FinishedAt = &now
		s.runs[i].ErrorSummary = "abandoned: process exited mid-run"
		count++
	}
	return count, nil
}
