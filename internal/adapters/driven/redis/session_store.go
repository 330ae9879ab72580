package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jack-ai/jackal-core/internal/core/domain"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	// Key prefix for conversation history lists
	historyPrefix = "chat:history:"

	// maxTurns caps how many messages a session retains
	maxTurns = 20

	// sessionTTL expires idle conversations
	sessionTTL = 24 * time.Hour
)

// SessionStore implements driven.SessionStore using Redis. Each session
// is a list of JSON-encoded messages, trimmed to the most recent
// maxTurns, with a TTL refreshed on every append.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// History returns the session's messages, oldest first. An unknown
// session is an empty history, not an error.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	entries, err := s.client.LRange(ctx, historyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	messages := make([]domain.Message, 0, len(entries))
	for _, entry := range entries {
		var msg domain.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Append adds messages to the session, trims it to the most recent
// maxTurns, and refreshes the TTL.
func (s *SessionStore) Append(ctx context.Context, sessionID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	values := make([]any, 0, len(messages))
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal session message: %w", err)
		}
		values = append(values, data)
	}

	key := historyPrefix + sessionID

	// Use pipeline for atomic operations
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -maxTurns, -1)
	pipe.Expire(ctx, key, sessionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append session messages: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}
