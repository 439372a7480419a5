package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[domain.RecordKey]*domain.Record
	order   []domain.RecordKey

	// FailInserts makes Insert return an error, for persistence-failure tests.
	FailInserts bool
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[domain.RecordKey]*domain.Record)}
}

// Insert persists a new record.
func (s *RecordStore) Insert(_ context.Context, rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInserts {
		return fmt.Errorf("store unavailable")
	}

	key := rec.Key()
	if _, exists := s.records[key]; exists {
		return domain.ErrDuplicate
	}

	clone := *rec
	s.records[key] = &clone
	s.order = append(s.order, key)
	return nil
}

// Exists reports whether the dedup key is stored.
func (s *RecordStore) Exists(_ context.Context, key domain.RecordKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[key]
	return ok, nil
}

// Get retrieves a record by its dedup key.
func (s *RecordStore) Get(_ context.Context, key domain.RecordKey) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// ListUnembedded returns records lacking a current-model embedding.
func (s *RecordStore) ListUnembedded(_ context.Context, model string, limit int) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Record
	for _, key := range s.order {
		rec := s.records[key]
		if rec.HasEmbedding(model) {
			continue
		}
		out = append(out, *rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ListEmbedded returns records carrying a current-model embedding.
func (s *RecordStore) ListEmbedded(_ context.Context, model, plugin string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Record
	for _, key := range s.order {
		rec := s.records[key]
		if !rec.HasEmbedding(model) {
			continue
		}
		if plugin != "" && rec.SourcePlugin != plugin {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// SetEmbedding writes embedding and model version for one record.
func (s *RecordStore) SetEmbedding(_ context.Context, key domain.RecordKey, embedding []float32, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Embedding = append([]float32(nil), embedding...)
	rec.EmbeddingModel = model
	return nil
}

// Stats returns store-wide counts.
func (s *RecordStore) Stats(_ context.Context, model string) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.Stats{RecordsByPlugin: make(map[string]int)}
	for _, rec := range s.records {
		stats.TotalRecords++
		stats.RecordsByPlugin[rec.SourcePlugin]++
		if rec.HasEmbedding(model) {
			stats.EmbeddedRecords++
		}
	}
	return stats, nil
}
