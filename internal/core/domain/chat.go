package domain

// Message roles accepted in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidTurn reports whether a client-supplied history item is usable:
// a user or assistant turn with non-empty string content.
func (m Message) ValidTurn() bool {
	return (m.Role == RoleUser || m.Role == RoleAssistant) && m.Content != ""
}

// ChatRequest is a user message plus optional conversation state.
// History is client-held; SessionID selects server-held history when a
// session store is configured.
type ChatRequest struct {
	Message   string    `json:"message"`
	History   []Message `json:"history,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

// ChatResponse carries the model's reply.
type ChatResponse struct {
	Response string `json:"response"`
}
