package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dobsilva08/metals-reports/internal/models"
	"github.com/rs/zerolog"
)

// Client tries an ordered list of providers until one returns text.
// Failures are fast-fail-and-fallback: no retries within a single provider,
// so latency stays bounded against the delivery schedule.
type Client struct {
	providers []Provider
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewClient creates a fallback-chain client over the given providers
func NewClient(providers []Provider, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		providers: providers,
		timeout:   timeout,
		logger:    logger.With().Str("component", "llm").Logger(),
	}
}

// FromConfig builds the fallback chain from configuration, in the configured
// priority order. Providers without an API key are skipped with a warning.
// An optional providerHint pins the chain to that single provider.
func FromConfig(cfg *models.Config, providerHint string, logger zerolog.Logger) (*Client, error) {
	order := cfg.FallbackOrder
	if providerHint != "" {
		order = []string{strings.ToLower(strings.TrimSpace(providerHint))}
	}

	providers := make([]Provider, 0, len(order))
	for _, name := range order {
		p, err := buildProvider(name, cfg, logger)
		if err != nil {
			return nil, err
		}
		if p == nil {
			logger.Warn().Str("provider", name).Msg("Provider has no API key configured, skipping")
			continue
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no usable LLM provider in order %s", strings.Join(order, ","))
	}

	return NewClient(providers, time.Duration(cfg.LLMTimeout)*time.Second, logger), nil
}

// buildProvider returns nil (no error) when the provider's key is not set
func buildProvider(name string, cfg *models.Config, logger zerolog.Logger) (Provider, error) {
	switch name {
	case "piapi":
		if cfg.PiAPIKey == "" {
			return nil, nil
		}
		return NewOpenAICompat(name, PiAPIEndpoint, cfg.PiAPIKey, cfg.PiAPIModel, logger), nil
	case "groq":
		if cfg.GroqKey == "" {
			return nil, nil
		}
		return NewOpenAICompat(name, GroqEndpoint, cfg.GroqKey, cfg.GroqModel, logger), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, nil
		}
		return NewOpenAICompat(name, OpenAIEndpoint, cfg.OpenAIKey, cfg.OpenAIModel, logger), nil
	case "deepseek":
		if cfg.DeepSeekKey == "" {
			return nil, nil
		}
		return NewOpenAICompat(name, DeepSeekEndpoint, cfg.DeepSeekKey, cfg.DeepSeekModel, logger), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, nil
		}
		return NewGemini(cfg.GeminiKey, cfg.GeminiModel, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", name)
	}
}

// Generate walks the chain in priority order and returns the first successful
// completion. When every provider fails it returns *AllProvidersFailedError
// carrying the per-provider reasons.
func (c *Client) Generate(ctx context.Context, req *Request) (*Result, error) {
	startTime := time.Now()
	failures := make([]ProviderFailure, 0, len(c.providers))

	for _, provider := range c.providers {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := provider.Generate(pctx, req)
		cancel()

		if err == nil {
			text = strings.TrimSpace(text)
			if text == "" {
				err = fmt.Errorf("empty completion")
			}
		}

		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("provider", provider.Name()).
				Msg("Provider failed, falling back to next")
			failures = append(failures, ProviderFailure{Provider: provider.Name(), Err: err})
			continue
		}

		elapsed := time.Since(startTime)
		c.logger.Info().
			Str("provider", provider.Name()).
			Int("response_length", len(text)).
			Dur("elapsed", elapsed).
			Msg("Report text generated")

		return &Result{
			Text:     text,
			Provider: provider.Name(),
			Elapsed:  elapsed,
		}, nil
	}

	return nil, &AllProvidersFailedError{Failures: failures}
}

// Close closes every provider in the chain
func (c *Client) Close() error {
	var firstErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
