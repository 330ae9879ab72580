package driving

import (
	"context"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// RetrievalService answers similarity queries over the knowledge base,
// falling back to keyword search when vector recall is weak.
type RetrievalService interface {
	// Retrieve returns up to limit documents relevant to the query,
	// deduplicated by id with vector-ranked results first. A limit <= 0
	// selects the default of 5. Embedding or vector-search failures are
	// returned as *domain.RetrievalError; the caller decides whether to
	// degrade gracefully.
	Retrieve(ctx context.Context, query string, limit int) (*domain.RetrievalResult, error)
}
