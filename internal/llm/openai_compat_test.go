package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompat_Generate(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1) Fluxos em ETFs..."}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAICompat("piapi", srv.URL, "test-key", "gpt-4o-mini", zerolog.Nop())

	text, err := p.Generate(context.Background(), &Request{
		SystemPrompt: "Você é um analista financeiro sênior.",
		UserPrompt:   "Gere um relatório.",
		Temperature:  0.4,
		MaxTokens:    1800,
	})
	require.NoError(t, err)
	assert.Equal(t, "1) Fluxos em ETFs...", text)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Equal(t, 1800, gotBody.MaxTokens)
}

func TestOpenAICompat_GenerateWithoutSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)

		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAICompat("groq", srv.URL, "k", "llama-3.1-70b-versatile", zerolog.Nop())
	_, err := p.Generate(context.Background(), &Request{UserPrompt: "oi"})
	require.NoError(t, err)
}

func TestOpenAICompat_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenAICompat("openai", srv.URL, "bad", "gpt-4o-mini", zerolog.Nop())
	_, err := p.Generate(context.Background(), &Request{UserPrompt: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenAICompat_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer srv.Close()

	p := NewOpenAICompat("deepseek", srv.URL, "k", "deepseek-chat", zerolog.Nop())
	_, err := p.Generate(context.Background(), &Request{UserPrompt: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestOpenAICompat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAICompat("piapi", srv.URL, "k", "gpt-4o-mini", zerolog.Nop())
	_, err := p.Generate(context.Background(), &Request{UserPrompt: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAICompat_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	p := NewOpenAICompat("piapi", srv.URL, "k", "gpt-4o-mini", zerolog.Nop())
	_, err := p.Generate(context.Background(), &Request{UserPrompt: "oi"})
	require.Error(t, err)
}
