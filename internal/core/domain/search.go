package domain

// SearchOptions configures a semantic search query.
type SearchOptions struct {
	// TopK is the maximum number of results.
	TopK int

	// Plugin restricts candidates to one plugin when non-empty.
	Plugin string
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	// Record is the matched record.
	Record Record

	// Score is the cosine similarity between the query vector and the
	// record's embedding.
	Score float64
}
