package driven

import (
	"context"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// KnowledgeStore persists (content, metadata, embedding) tuples and answers
// similarity queries. The store exclusively owns persisted rows: retrieval
// only reads, ingestion only inserts, and DeleteAll is the single
// destructive operation.
type KnowledgeStore interface {
	// Insert stores one document and returns its assigned id.
	// Content must be non-empty (domain.ErrInvalidInput otherwise).
	// Returns *domain.StoreError on backend failure; never drops a write
	// silently.
	Insert(ctx context.Context, content string, metadata domain.Metadata, embedding []float32) (int64, error)

	// DeleteAll removes every document and returns the number deleted.
	// Used only by the explicit "clear existing" admin operation.
	DeleteAll(ctx context.Context) (int64, error)

	// VectorSearch returns documents whose similarity to the query
	// embedding is at least threshold, ordered by descending similarity,
	// at most limit rows. Returns *domain.StoreError on backend failure
	// rather than an empty result.
	VectorSearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*domain.ScoredDocument, error)

	// KeywordSearch returns documents whose content contains any of the
	// terms case-insensitively, ranked by the number of distinct terms
	// matched (ties by insertion order), at most limit rows.
	KeywordSearch(ctx context.Context, terms []string, limit int) ([]*domain.Document, error)

	// List returns all documents (content and metadata, no embeddings),
	// newest first.
	List(ctx context.Context) ([]*domain.Document, error)

	// Count returns the total document count.
	Count(ctx context.Context) (int, error)

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection handle.
	Close() error
}
