package driven

import (
	"context"
)

// EmbeddingService turns text into a fixed-length vector. Implementations
// make one outbound call per invocation and never cache; callers avoid
// redundant calls themselves.
type EmbeddingService interface {
	// EmbedQuery generates an embedding for a single text.
	// Returns *domain.EmbeddingError when the remote call fails.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
