package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcove-dev/alcove/internal/adapters/driven/storage/memory"
	"github.com/alcove-dev/alcove/internal/core/domain"
)

// --- Mock implementations for search testing ---

// searchMockProvider implements driven.EmbeddingService with a fixed
// query vector, so candidate scores are fully determined by the test.
type searchMockProvider struct {
	model    string
	queryVec []float32
	embedErr error
}

func (m *searchMockProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return append([]float32(nil), m.queryVec...), nil
}

func (m *searchMockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vec, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (m *searchMockProvider) Dimensions() int            { return len(m.queryVec) }
func (m *searchMockProvider) ModelName() string          { return m.model }
func (m *searchMockProvider) MaxInputChars() int         { return 8192 }
func (m *searchMockProvider) Ping(_ context.Context) error { return nil }
func (m *searchMockProvider) Close() error               { return nil }

func seedEmbedded(t *testing.T, store *memory.RecordStore, plugin, id, model string, vec []float32, ts time.Time) {
	t.Helper()
	err := store.Insert(context.Background(), &domain.Record{
		SourcePlugin:    plugin,
		SourceID:        id,
		ItemType:        "note",
		Title:           "title " + id,
		Content:         "content " + id,
		SourceTimestamp: ts,
	})
	require.NoError(t, err)
	key := domain.RecordKey{SourcePlugin: plugin, SourceID: id}
	require.NoError(t, store.SetEmbedding(context.Background(), key, vec, model))
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	store := memory.NewRecordStore()
	provider := &searchMockProvider{model: "test-embed-1", queryVec: []float32{1, 0}}
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedEmbedded(t, store, "alpha", "orthogonal", provider.model, []float32{0, 1}, ts)
	seedEmbedded(t, store, "alpha", "exact", provider.model, []float32{2, 0}, ts)
	seedEmbedded(t, store, "alpha", "diagonal", provider.model, []float32{1, 1}, ts)

	engine := NewSearchEngine(store, provider)
	results, err := engine.Search(context.Background(), "query", domain.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "exact", results[0].Record.SourceID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "diagonal", results[1].Record.SourceID)
	assert.InDelta(t, 0.7071, results[1].Score, 1e-3)
}

func TestSearch_TieBreaksOnRecency(t *testing.T) {
	store := memory.NewRecordStore()
	provider := &searchMockProvider{model: "test-embed-1", queryVec: []float32{1, 0}}

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	seedEmbedded(t, store, "alpha", "old", provider.model, []float32{1, 0}, older)
	seedEmbedded(t, store, "alpha", "new", provider.model, []float32{1, 0}, newer)

	engine := NewSearchEngine(store, provider)
	results, err := engine.Search(context.Background(), "query", domain.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "new", results[0].Record.SourceID)
	assert.Equal(t, "old", results[1].Record.SourceID)
}

func TestSearch_IsDeterministic(t *testing.T) {
	store := memory.NewRecordStore()
	provider := &searchMockProvider{model: "test-embed-1", queryVec: []float32{1, 0.5}}
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedEmbedded(t, store, "alpha", "a", provider.model, []float32{0.9, 0.1}, ts)
	seedEmbedded(t, store, "beta", "b", provider.model, []float32{0.5, 0.5}, ts.Add(time.Hour))
	seedEmbedded(t, store, "alpha", "c", provider.model, []float32{0.1, 0.9}, ts)

	engine := NewSearchEngine(store, provider)

	first, err := engine.Search(context.Background(), "query", domain.SearchOptions{TopK: 3})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Search(context.Background(), "query", domain.SearchOptions{TopK: 3})
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i].Score, first[i-1].Score)
	}
}

func TestSearch_PluginFilter(t *testing.T) {
	store := memory.NewRecordStore()
	provider := &searchMockProvider{model: "test-embed-1", queryVec: []float32{1, 0}}
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedEmbedded(t, store, "gmail", "g-1", provider.model, []float32{1, 0}, ts)
	seedEmbedded(t, store, "whoop", "w-1", provider.model, []float32{1, 0}, ts)

	engine := NewSearchEngine(store, provider)
	results, err := engine.Search(context.Background(), "query", domain.SearchOptions{TopK: 10, Plugin: "gmail"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "gmail", results[0].Record.SourcePlugin)
}

func TestSearch_ExcludesUnembeddedAndStaleRecords(t *testing.T) {
	store := memory.NewRecordStore()
	provider := &searchMockProvider{model: "test-embed-1", queryVec: []float32{1, 0}}
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedEmbedded(t, store, "alpha", "current", provider.model, []float32{1, 0}, ts)
	seedEmbedded(t, store, "alpha", "stale", "old-model", []float32{1, 0}, ts)
	require.NoError(t, store.Insert(context.Background(), &domain.Record{
		SourcePlugin: "alpha",
		SourceID:     "pending",
		Title:        "not yet embedded",
	}))

	engine := NewSearchEngine(store, provider)
	results, err := engine.Search(context.Background(), "query", domain.SearchOptions{TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "current", results[0].Record.SourceID)
}

func TestSearch_FewerCandidatesThanTopK(t *testing.T) {
	store := memory.NewRecordStore()
	provider := &searchMockProvider{model: "test-embed-1", queryVec: []float32{1, 0}}

	seedEmbedded(t, store, "alpha", "only", provider.model, []float32{1, 0},
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	engine := NewSearchEngine(store, provider)
	results, err := engine.Search(context.Background(), "query", domain.SearchOptions{TopK: 10})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_EmptyQuery(t *testing.T) {
	engine := NewSearchEngine(memory.NewRecordStore(), &searchMockProvider{model: "m", queryVec: []float32{1}})

	_, err := engine.Search(context.Background(), "", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_NoProvider(t *testing.T) {
	engine := NewSearchEngine(memory.NewRecordStore(), nil)

	_, err := engine.Search(context.Background(), "query", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSearch_ProviderFailure(t *testing.T) {
	provider := &searchMockProvider{model: "m", queryVec: []float32{1}, embedErr: errors.New("provider down")}
	engine := NewSearchEngine(memory.NewRecordStore(), provider)

	_, err := engine.Search(context.Background(), "query", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []float32
		want  float64
		valid bool
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0, true},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0, true},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0, true},
		{"scale invariant", []float32{1, 1}, []float32{10, 10}, 1.0, true},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0, false},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0, false},
		{"empty", nil, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cosineSimilarity(tt.a, tt.b)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
