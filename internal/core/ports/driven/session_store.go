package driven

import (
	"context"

	"github.com/jack-ai/jackal-core/internal/core/domain"
)

// SessionStore keeps bounded per-session conversation history. Optional:
// when no store is configured the chat surface relies on client-held
// history only.
type SessionStore interface {
	// History returns the stored turns for a session, oldest first.
	// An unknown session yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Append adds turns to a session's history, trimming to the store's
	// configured cap.
	Append(ctx context.Context, sessionID string, messages ...domain.Message) error

	// Close releases the underlying client.
	Close() error
}
