package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jack-ai/jackal-core/internal/core/domain"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
	"github.com/jack-ai/jackal-core/internal/core/ports/driving"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

const (
	// chatRetrieveLimit is how many documents ground an answer.
	chatRetrieveLimit = 5

	// historyLimit caps the conversation turns forwarded to the model.
	historyLimit = 20
)

const personaPreamble = `You are Jack.ai, a digital representation of Jack Wang. Answer as if you were Jack based on the following information about him, depending on the question asked, decide to answer in a humorous way or serious tone:

Jack Wang is a student studying math and computer science at MIT. He has experience in full-stack development, machine learning, and more.
He's passionate about AI and its applications in solving real-world problems.
Jack has worked on various projects including web applications and machine learning models.`

const personaClosing = `If asked about opinions, preferences, or personal details not included in this information, respond naturally but make it clear you're offering a general perspective that may not exactly match Jack's views.
Keep your responses concise, helpful, and in a conversational tone.

Maintain continuity with the conversation history.`

// chatService is the answering collaborator: it grounds a user message in
// retrieved documents and forwards the augmented conversation to the
// language model. Retrieval failure is a policy decision made here, not in
// the retriever: the chat proceeds without grounding context.
type chatService struct {
	retriever driving.RetrievalService
	llm       driven.LLMService
	sessions  driven.SessionStore // nil when no session store is configured
	logger    *slog.Logger
}

// ChatConfig holds dependencies for the chat service.
type ChatConfig struct {
	Retriever driving.RetrievalService
	LLM       driven.LLMService
	Sessions  driven.SessionStore
	Logger    *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(cfg ChatConfig) driving.ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		retriever: cfg.Retriever,
		llm:       cfg.LLM,
		sessions:  cfg.Sessions,
		logger:    logger,
	}
}

// Chat answers one user message.
func (s *chatService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	contextText := s.groundingContext(ctx, message)

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: buildSystemMessage(contextText)},
	}

	history := s.conversationHistory(ctx, req)
	messages = append(messages, history...)

	// Append the current message unless the supplied history already ends
	// with it.
	if n := len(history); n == 0 ||
		history[n-1].Role != domain.RoleUser ||
		history[n-1].Content != message {
		messages = append(messages, domain.Message{Role: domain.RoleUser, Content: message})
	}

	reply, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	s.recordTurns(ctx, req.SessionID, message, reply)

	return &domain.ChatResponse{Response: reply}, nil
}

// groundingContext retrieves relevant documents and joins their contents.
// On retrieval failure it returns an empty context so the chat can still
// answer, just ungrounded.
func (s *chatService) groundingContext(ctx context.Context, message string) string {
	result, err := s.retriever.Retrieve(ctx, message, chatRetrieveLimit)
	if err != nil {
		s.logger.Warn("retrieval failed, answering without grounding context", "error", err)
		return ""
	}
	return result.ContextText()
}

// conversationHistory merges server-held session history (when configured)
// with the valid client-supplied turns, capped to the most recent
// historyLimit messages.
func (s *chatService) conversationHistory(ctx context.Context, req domain.ChatRequest) []domain.Message {
	var history []domain.Message

	if s.sessions != nil && req.SessionID != "" {
		stored, err := s.sessions.History(ctx, req.SessionID)
		if err != nil {
			s.logger.Warn("failed to load session history", "session_id", req.SessionID, "error", err)
		} else {
			history = stored
		}
	}

	for _, m := range req.History {
		if m.ValidTurn() {
			history = append(history, m)
		}
	}

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	return history
}

// recordTurns appends the exchange to the session, if one is in use.
func (s *chatService) recordTurns(ctx context.Context, sessionID, message, reply string) {
	if s.sessions == nil || sessionID == "" {
		return
	}
	err := s.sessions.Append(ctx, sessionID,
		domain.Message{Role: domain.RoleUser, Content: message},
		domain.Message{Role: domain.RoleAssistant, Content: reply},
	)
	if err != nil {
		s.logger.Warn("failed to record session turns", "session_id", sessionID, "error", err)
	}
}

// buildSystemMessage assembles the persona preamble, the grounding context
// when there is any, and the closing instructions.
func buildSystemMessage(contextText string) string {
	var b strings.Builder
	b.WriteString(personaPreamble)
	if strings.TrimSpace(contextText) != "" {
		b.WriteString("\n\nHere is specific information about Jack that's relevant to this question:\n")
		b.WriteString(contextText)
	}
	b.WriteString("\n\n")
	b.WriteString(personaClosing)
	return b.String()
}
