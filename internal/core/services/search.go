package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/core/ports/driving"
)

// Ensure SearchEngine implements the interface.
var _ driving.SearchService = (*SearchEngine)(nil)

// SearchEngine answers similarity queries with a brute-force cosine scan
// over stored vectors. At personal-data scale (thousands to tens of
// thousands of records) a linear scan outperforms the bookkeeping of an
// approximate index; a different backend can replace this behind the same
// driving.SearchService contract.
type SearchEngine struct {
	store    driven.RecordStore
	provider driven.EmbeddingService
}

// NewSearchEngine creates a search engine over the record store.
func NewSearchEngine(store driven.RecordStore, provider driven.EmbeddingService) *SearchEngine {
	return &SearchEngine{store: store, provider: provider}
}

// Search embeds the query with the same model as stored vectors and
// returns the topK highest-scoring records. Records without an embedding
// are excluded from candidate scoring. Ties break toward the more recent
// source timestamp.
func (s *SearchEngine) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if s.provider == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}

	queryVec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingProvider, err)
	}

	candidates, err := s.store.ListEmbedded(ctx, s.provider.ModelName(), opts.Plugin)
	if err != nil {
		return nil, fmt.Errorf("%w: list embedded: %w", domain.ErrPersistence, err)
	}

	results := make([]domain.SearchResult, 0, len(candidates))
	for i := range candidates {
		score, ok := cosineSimilarity(queryVec, candidates[i].Embedding)
		if !ok {
			continue
		}
		results = append(results, domain.SearchResult{Record: candidates[i], Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.SourceTimestamp.After(results[j].Record.SourceTimestamp)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns false for mismatched dimensions or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
