package domain

import "time"

// Record represents a canonical imported item.
// It is the source-agnostic representation persisted by the core after
// normalisation of plugin output.
type Record struct {
	// SourcePlugin identifies the plugin that produced this record.
	SourcePlugin string

	// SourceID is the item's identifier within its plugin.
	// It must be stable across re-imports of the same logical item;
	// (SourcePlugin, SourceID) is the dedup key.
	SourceID string

	// ItemType is a free-form tag such as "email", "task" or "measurement".
	ItemType string

	// Title is the human-readable title (subject line, task name, ...).
	Title string

	// Content is the full text body.
	Content string

	// Metadata contains source-specific key-value pairs, opaque to the core.
	Metadata map[string]any

	// SourceTimestamp is the event's own time, distinct from import time.
	SourceTimestamp time.Time

	// ImportedAt is when the record was inserted into the store.
	ImportedAt time.Time

	// Embedding is the vector representation for semantic search.
	// Nil until the embedding engine has processed the record.
	Embedding []float32

	// EmbeddingModel is the model version that produced Embedding.
	// Used to invalidate stale vectors when the model changes.
	EmbeddingModel string
}

// Key returns the dedup key for this record.
func (r *Record) Key() RecordKey {
	return RecordKey{SourcePlugin: r.SourcePlugin, SourceID: r.SourceID}
}

// HasEmbedding reports whether the record carries a vector produced by the
// given model version. An empty model matches any non-nil embedding.
func (r *Record) HasEmbedding(model string) bool {
	if len(r.Embedding) == 0 {
		return false
	}
	return model == "" || r.EmbeddingModel == model
}

// EmbeddingInput returns the text submitted to the embedding provider.
// Title is concatenated before content so that truncation at the provider's
// input limit keeps the most salient, front-loaded text.
func (r *Record) EmbeddingInput() string {
	switch {
	case r.Title == "":
		return r.Content
	case r.Content == "":
		return r.Title
	default:
		return r.Title + "\n\n" + r.Content
	}
}

// RecordKey identifies a record by its dedup pair.
type RecordKey struct {
	SourcePlugin string
	SourceID     string
}

// RawItem is a plugin's output before normalisation.
// Field semantics match Record; plugins fill the source-native values and
// the normalisation layer validates them into a Record.
type RawItem struct {
	// SourceID is the stable per-plugin identifier (message ID, task ID, ...).
	SourceID string

	// ItemType tags the kind of item.
	ItemType string

	// Title is the item title or subject.
	Title string

	// Content is the item body.
	Content string

	// Metadata carries source-specific extras.
	Metadata map[string]any

	// SourceTimestamp is the event's own time.
	SourceTimestamp time.Time
}
