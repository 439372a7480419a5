package driving

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// SearchService answers similarity queries over stored records.
// The context assembly collaborator calls Search and inserts the ranked
// records into a downstream prompt; the core does not format prompts.
type SearchService interface {
	// Search embeds the query and returns the topK most similar embedded
	// records by cosine similarity, ties broken by more recent source
	// timestamp. Records without an embedding are never candidates.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
