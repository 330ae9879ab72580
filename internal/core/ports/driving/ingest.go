package driving

import (
	"context"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// IngestService feeds source material into the knowledge store and serves
// the admin inspection surface.
type IngestService interface {
	// IngestFile chunks, embeds, and stores one file, strictly
	// sequentially. Returns false (after logging the cause) on any chunk
	// failure so a bulk load can continue with the next file; the
	// committed prefix of chunks stays in the store.
	IngestFile(ctx context.Context, path string, base domain.Metadata) bool

	// IngestStructured stores structured data as one pretty-printed JSON
	// document tagged with the given category.
	IngestStructured(ctx context.Context, data map[string]any, category string) bool

	// BulkLoad ingests every markdown file under the configured knowledge
	// directory, optionally clearing existing documents first. Returns
	// domain.ErrNoSourceFiles when the directory holds no markdown files
	// and *domain.StoreError when the store is unreachable.
	BulkLoad(ctx context.Context, clearExisting bool) (*domain.LoadReport, error)

	// Documents lists all stored documents, newest first.
	Documents(ctx context.Context) ([]*domain.Document, error)
}
