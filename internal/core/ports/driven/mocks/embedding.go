package mocks

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// MockEmbeddingService is a deterministic in-memory EmbeddingService for
// testing. Identical texts always produce identical vectors.
type MockEmbeddingService struct {
	dimensions int
	model      string
	failNext   error
	calls      int
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 16,
		model:      "mock-embedding-model",
	}
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, &domain.EmbeddingError{Err: err}
	}
	return m.generateEmbedding(text), nil
}

func (m *MockEmbeddingService) Dimensions() int { return m.dimensions }

func (m *MockEmbeddingService) Model() string { return m.model }

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error { return nil }

func (m *MockEmbeddingService) Close() error { return nil }

// generateEmbedding derives a pseudo-random but stable vector from the
// text hash. Newlines are collapsed the way real adapters do, so texts
// differing only in line breaks embed identically.
func (m *MockEmbeddingService) generateEmbedding(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ReplaceAll(text, "\n", " ")))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000)/500.0 - 1.0
	}
	return embedding
}

// Helper methods for testing

// SetFailNext makes the next EmbedQuery call fail with the given cause.
func (m *MockEmbeddingService) SetFailNext(cause error) {
	m.failNext = cause
}

// Calls returns how many times EmbedQuery was invoked.
func (m *MockEmbeddingService) Calls() int {
	return m.calls
}
