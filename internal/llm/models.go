package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Request carries one generation request through the fallback chain
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Result is the outcome of a successful generation
type Result struct {
	Text     string
	Provider string
	Elapsed  time.Duration
}

// Provider is a single LLM backend in the fallback chain
type Provider interface {
	// Name returns the provider identifier (piapi, groq, openai, deepseek, gemini)
	Name() string

	// Generate produces completion text for the request. The context carries
	// the per-provider timeout; any failure makes the chain advance to the
	// next provider.
	Generate(ctx context.Context, req *Request) (string, error)

	// Close releases provider resources
	Close() error
}

// ProviderFailure records why one provider in the chain did not produce text
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllProvidersFailedError is returned when the whole fallback chain is
// exhausted. It carries the per-provider failure reasons.
type AllProvidersFailedError struct {
	Failures []ProviderFailure
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}
