package driving

import (
	"context"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// ChatService answers a user message grounded in retrieved knowledge.
type ChatService interface {
	// Chat validates the request, retrieves grounding context, and asks
	// the language model for a reply. Retrieval failures degrade to an
	// ungrounded answer; model failures are returned to the caller.
	// Returns domain.ErrInvalidInput for a missing message.
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}
