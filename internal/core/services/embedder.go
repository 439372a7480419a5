package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/logger"
)

// defaultBatchSize bounds how many records are embedded per provider call,
// controlling peak memory and respecting upstream rate limits.
const defaultBatchSize = 32

// Embedder generates vectors for records that lack an embedding or carry
// one from a stale model version.
type Embedder struct {
	store     driven.RecordStore
	provider  driven.EmbeddingService
	batchSize int
}

// NewEmbedder creates an embedding batch engine.
func NewEmbedder(store driven.RecordStore, provider driven.EmbeddingService) *Embedder {
	return &Embedder{
		store:     store,
		provider:  provider,
		batchSize: defaultBatchSize,
	}
}

// Backfill embeds every record with a missing or stale embedding, in
// bounded batches. A batch-level provider failure stops the pass and
// leaves its records unembedded for the next backfill; batches already
// written stay written. Returns the number of records embedded.
func (e *Embedder) Backfill(ctx context.Context) (int, error) {
	if e.provider == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	model := e.provider.ModelName()
	total := 0

	for {
		batch, err := e.store.ListUnembedded(ctx, model, e.batchSize)
		if err != nil {
			return total, fmt.Errorf("%w: list unembedded: %w", domain.ErrPersistence, err)
		}
		if len(batch) == 0 {
			return total, nil
		}

		n, err := e.embedBatch(ctx, batch, model)
		total += n
		if err != nil {
			return total, err
		}

		// A short page means the store is drained; avoids re-querying
		// records that keep failing normalisation into empty input.
		if len(batch) < e.batchSize {
			return total, nil
		}
	}
}

// embedBatch embeds one page of records and writes each vector together
// with the model version.
func (e *Embedder) embedBatch(ctx context.Context, batch []domain.Record, model string) (int, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = truncate(batch[i].EmbeddingInput(), e.provider.MaxInputChars())
	}

	vectors, err := e.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingProvider, len(vectors), len(batch))
	}

	written := 0
	for i := range batch {
		if len(vectors[i]) == 0 {
			logger.Debug("empty embedding for %s/%s", batch[i].SourcePlugin, batch[i].SourceID)
			continue
		}
		if err := e.store.SetEmbedding(ctx, batch[i].Key(), vectors[i], model); err != nil {
			return written, fmt.Errorf("%w: set embedding %s/%s: %w",
				domain.ErrPersistence, batch[i].SourcePlugin, batch[i].SourceID, err)
		}
		written++
	}
	return written, nil
}

// truncate keeps the leading portion of text up to limit characters.
// Canonical records front-load the most salient content (title before
// body), so the head is the right part to keep.
func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	// Back off to a rune boundary so the provider never sees a split
	// multi-byte character.
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
