package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jack-ai/jackal-core/internal/core/domain"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

// Generation parameters for conversational answers.
const (
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// OpenAILLM implements LLMService using OpenAI's chat completions API
type OpenAILLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAILLM creates a new OpenAI chat completion service
func NewOpenAILLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if model == "" {
		model = "gpt-4o"
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAILLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}, nil
}

// chatCompletionRequest is the request body for the chat completions API
type chatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

// chatCompletionResponse is the response from the chat completions API
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete sends the conversation to the model and returns its reply
func (l *OpenAILLM) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       l.model,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (l *OpenAILLM) Model() string {
	return l.model
}

// Close releases resources held by the service
func (l *OpenAILLM) Close() error {
	l.client.CloseIdleConnections()
	return nil
}
