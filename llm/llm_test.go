package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		assert.False(t, req.Stream)
		assert.Equal(t, systemMessage, req.System)

		fmt.Fprint(w, `{"response": "  SOL looks volatile.  ", "done": true}`)
	}))
	defer srv.Close()

	gen := NewOllama(config.LLMConfig{Endpoint: srv.URL + "/", Model: "mistral", Timeout: time.Second})
	text, err := gen.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "SOL looks volatile.", text)
}

func TestOllamaEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": ""}`)
	}))
	defer srv.Close()

	gen := NewOllama(config.LLMConfig{Endpoint: srv.URL, Model: "mistral", Timeout: time.Second})
	_, err := gen.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "prompt", req.Messages[1].Content)

		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "insight"}}]}`)
	}))
	defer srv.Close()

	gen := NewOpenAI(config.LLMConfig{Endpoint: srv.URL, APIKey: "key", Model: "deepseek-chat", Timeout: time.Second})
	text, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "insight", text)
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	gen := NewOpenAI(config.LLMConfig{Endpoint: srv.URL, Model: "m", Timeout: time.Second})
	_, err := gen.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "status 401")
}

func TestNewSelectsBackend(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gen, err := New(context.Background(), config.LLMConfig{Provider: "ollama", Model: "mistral"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "ollama", gen.Name())

	_, err = New(context.Background(), config.LLMConfig{Provider: "claude", Model: "claude-sonnet-4-20250514"}, logger)
	assert.Error(t, err)

	_, err = New(context.Background(), config.LLMConfig{Provider: "huggingface"}, logger)
	assert.Error(t, err)
}
