package mocks

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// MockKnowledgeStore is an in-memory KnowledgeStore with cosine-ranked
// vector search, for testing.
type MockKnowledgeStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   []*domain.Document

	// failure injection
	InsertErr error
	QueryErr  error
	DeleteErr error
}

// NewMockKnowledgeStore creates a new MockKnowledgeStore
func NewMockKnowledgeStore() *MockKnowledgeStore {
	return &MockKnowledgeStore{nextID: 1}
}

func (m *MockKnowledgeStore) Insert(ctx context.Context, content string, metadata domain.Metadata, embedding []float32) (int64, error) {
	if m.InsertErr != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpInsert, Err: m.InsertErr}
	}
	if content == "" {
		return 0, domain.ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.docs = append(m.docs, &domain.Document{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		Embedding: append([]float32(nil), embedding...),
		CreatedAt: time.Now(),
	})
	return id, nil
}

func (m *MockKnowledgeStore) DeleteAll(ctx context.Context) (int64, error) {
	if m.DeleteErr != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpDelete, Err: m.DeleteErr}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.docs))
	m.docs = nil
	return n, nil
}

func (m *MockKnowledgeStore) VectorSearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*domain.ScoredDocument, error) {
	if m.QueryErr != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: m.QueryErr}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var scored []*domain.ScoredDocument
	for _, doc := range m.docs {
		if doc.Embedding == nil {
			continue
		}
		score := cosine(embedding, doc.Embedding)
		if score >= threshold {
			scored = append(scored, &domain.ScoredDocument{Document: doc, Similarity: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (m *MockKnowledgeStore) KeywordSearch(ctx context.Context, terms []string, limit int) ([]*domain.Document, error) {
	if m.QueryErr != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: m.QueryErr}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type match struct {
		doc   *domain.Document
		count int
	}
	var matches []match
	for _, doc := range m.docs {
		content := strings.ToLower(doc.Content)
		count := 0
		for _, term := range terms {
			if term != "" && strings.Contains(content, strings.ToLower(term)) {
				count++
			}
		}
		if count > 0 {
			matches = append(matches, match{doc: doc, count: count})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].count > matches[j].count
	})

	var out []*domain.Document
	for _, mt := range matches {
		out = append(out, mt.doc)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockKnowledgeStore) List(ctx context.Context) ([]*domain.Document, error) {
	if m.QueryErr != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: m.QueryErr}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Document, len(m.docs))
	for i, doc := range m.docs {
		out[len(m.docs)-1-i] = doc
	}
	return out, nil
}

func (m *MockKnowledgeStore) Count(ctx context.Context) (int, error) {
	if m.QueryErr != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpQuery, Err: m.QueryErr}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func (m *MockKnowledgeStore) Ping(ctx context.Context) error {
	if m.QueryErr != nil {
		return &domain.StoreError{Op: domain.StoreOpQuery, Err: m.QueryErr}
	}
	return nil
}

func (m *MockKnowledgeStore) Close() error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
