package driven

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// RecordStore persists canonical records.
// It is the single owner of record rows; the embedding engine mutates only
// the embedding columns through SetEmbedding, never content fields.
type RecordStore interface {
	// Insert persists a new record.
	// Returns domain.ErrDuplicate if the dedup key already exists.
	Insert(ctx context.Context, rec *domain.Record) error

	// Exists reports whether a record with the dedup key is stored.
	Exists(ctx context.Context, key domain.RecordKey) (bool, error)

	// Get retrieves a record by its dedup key.
	Get(ctx context.Context, key domain.RecordKey) (*domain.Record, error)

	// ListUnembedded returns up to limit records lacking an embedding or
	// carrying an embedding from a different model version.
	ListUnembedded(ctx context.Context, model string, limit int) ([]domain.Record, error)

	// ListEmbedded returns all records carrying an embedding for the given
	// model, optionally restricted to one plugin. Content fields are
	// included so search results need no second lookup.
	ListEmbedded(ctx context.Context, model, plugin string) ([]domain.Record, error)

	// SetEmbedding writes embedding and model version for one record
	// atomically.
	SetEmbedding(ctx context.Context, key domain.RecordKey, embedding []float32, model string) error

	// Stats returns store-wide counts for the control plane.
	Stats(ctx context.Context, model string) (*domain.Stats, error)
}
