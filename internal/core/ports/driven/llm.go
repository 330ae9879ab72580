package driven

import (
	"context"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// LLMService produces a completion for a conversation.
type LLMService interface {
	// Complete sends the messages to the model and returns its reply.
	Complete(ctx context.Context, messages []domain.Message) (string, error)

	// Model returns the model name being used
	Model() string

	// Close releases resources held by the LLM service
	Close() error
}
