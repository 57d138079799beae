package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Gemini is a fallback-chain provider backed by the Google Gemini API
type Gemini struct {
	apiKey      string
	model       string
	logger      zerolog.Logger
	genaiClient *genai.Client
	mu          sync.Mutex
}

// NewGemini creates a new Gemini provider
func NewGemini(apiKey, model string, logger zerolog.Logger) *Gemini {
	return &Gemini{
		apiKey: apiKey,
		model:  model,
		logger: logger.With().Str("component", "llm").Str("provider", "gemini").Logger(),
	}
}

// Name returns the provider identifier
func (g *Gemini) Name() string {
	return "gemini"
}

// getClient returns or creates a genai client (thread-safe)
func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.genaiClient != nil {
		return g.genaiClient, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	g.genaiClient = client
	g.logger.Info().Msg("Gemini client created and cached")
	return g.genaiClient, nil
}

// Close closes the Gemini client and releases resources
func (g *Gemini) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.genaiClient != nil {
		err := g.genaiClient.Close()
		g.genaiClient = nil
		if err != nil {
			g.logger.Error().Err(err).Msg("Failed to close Gemini client")
			return err
		}
		g.logger.Info().Msg("Gemini client closed")
	}
	return nil
}

// Generate makes one API call to Gemini and returns the completion text
func (g *Gemini) Generate(ctx context.Context, req *Request) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get genai client: %w", err)
	}

	model := client.GenerativeModel(g.model)
	model.SetTemperature(req.Temperature)
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	g.logger.Debug().
		Str("model", g.model).
		Int("prompt_length", len(req.UserPrompt)).
		Msg("Sending request to Gemini")

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	// Extract text from response
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts in response")
	}

	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return responseText.String(), nil
}
