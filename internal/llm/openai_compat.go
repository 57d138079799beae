package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// Chat-completions endpoints for the OpenAI-compatible providers
const (
	PiAPIEndpoint    = "https://api.piapi.ai/v1/chat/completions"
	GroqEndpoint     = "https://api.groq.com/openai/v1/chat/completions"
	OpenAIEndpoint   = "https://api.openai.com/v1/chat/completions"
	DeepSeekEndpoint = "https://api.deepseek.com/v1/chat/completions"
)

// chatRequest is the OpenAI chat-completions request body
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the response body we consume
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAICompat calls any provider exposing the OpenAI chat-completions
// contract (PiAPI, Groq, OpenAI, DeepSeek)
type OpenAICompat struct {
	name       string
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewOpenAICompat creates a chat-completions provider for the given endpoint
func NewOpenAICompat(name, endpoint, apiKey, model string, logger zerolog.Logger) *OpenAICompat {
	return &OpenAICompat{
		name:       name,
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		logger:     logger.With().Str("component", "llm").Str("provider", name).Logger(),
	}
}

// Name returns the provider identifier
func (p *OpenAICompat) Name() string {
	return p.name
}

// Close releases provider resources (none for plain HTTP providers)
func (p *OpenAICompat) Close() error {
	return nil
}

// Generate issues one chat-completions request and returns the completion text
func (p *OpenAICompat) Generate(ctx context.Context, req *Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.Debug().
		Str("model", p.model).
		Int("prompt_length", len(req.UserPrompt)).
		Msg("Sending chat completion request")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider returned %s: %s", resp.Status, truncate(respBody, 500))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response had no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// truncate limits error payloads included in messages
func truncate(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max])
	}
	return string(b)
}
