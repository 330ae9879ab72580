package mocks

import (
	"context"
	"sync"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// MockSessionStore is an in-memory SessionStore for testing.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string][]domain.Message
	MaxLen   int
	Err      error
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string][]domain.Message),
		MaxLen:   20,
	}
}

func (m *MockSessionStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.sessions[sessionID]...), nil
}

func (m *MockSessionStore) Append(ctx context.Context, sessionID string, messages ...domain.Message) error {
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hist := append(m.sessions[sessionID], messages...)
	if m.MaxLen > 0 && len(hist) > m.MaxLen {
		hist = hist[len(hist)-m.MaxLen:]
	}
	m.sessions[sessionID] = hist
	return nil
}

func (m *MockSessionStore) Close() error { return nil }
