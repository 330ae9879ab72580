package mocks

import (
	"context"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// MockLLMService is a canned-response LLMService that records the last
// conversation it was asked to complete.
type MockLLMService struct {
	Response     string
	Err          error
	LastMessages []domain.Message
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{Response: "mock reply"}
}

func (m *MockLLMService) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	m.LastMessages = append([]domain.Message(nil), messages...)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockLLMService) Model() string { return "mock-chat-model" }

func (m *MockLLMService) Close() error { return nil }
