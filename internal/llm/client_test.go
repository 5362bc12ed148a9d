// ABOUTME: Tests for the provider factory and the HTTP-backed completion clients
// ABOUTME: Uses httptest servers in place of OpenAI-compatible and Anthropic endpoints
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/logging"
	"github.com/harper/bookrag/internal/models"
)

func TestNew_ProviderSelection(t *testing.T) {
	ctx := context.Background()
	logger := logging.Nop()

	cfg := config.Default()
	cfg.LLMProvider = "none"
	client, err := New(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Equal(t, "none", ModelName(client))

	cfg.LLMProvider = "openai"
	cfg.OpenAIKey = ""
	_, err = New(ctx, cfg, logger)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrLLMUnavailable))

	cfg.LLMProvider = "anthropic"
	cfg.AnthropicKey = ""
	_, err = New(ctx, cfg, logger)
	assert.True(t, errors.Is(err, models.ErrLLMUnavailable))

	cfg.LLMProvider = "ollama"
	cfg.OllamaModel = "mistral"
	client, err = New(ctx, cfg, logger)
	require.NoError(t, err)
	_, limited := client.(*RateLimited)
	assert.True(t, limited, "expected rate limited client when requests_per_second > 0")
	assert.Equal(t, "mistral", ModelName(client))
}

func TestOpenAIClient_Complete(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if n == 1 {
			http.Error(w, `{"error":{"message":"busy"}}`, http.StatusServiceUnavailable)
			return
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "echo: " + req.Messages[0].Content},
			}},
		})
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{
		APIKey:     "ollama",
		BaseURL:    srv.URL + "/v1",
		Model:      "llama3",
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "echo: ping", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "first 503 should be retried")
	assert.Equal(t, "llama3", client.Model())
}

func TestOpenAIClient_RequiresKeyOrBaseURL(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrLLMUnavailable))
}

func TestAnthropicClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "part one, "}, {"type": "text", "text": "part two"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(AnthropicConfig{
		APIKey:  "test",
		BaseURL: srv.URL + "/",
		Model:   "claude-test",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "part one, part two", out)
}

type countingClient struct {
	calls int32
}

func (c *countingClient) Complete(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	return prompt, nil
}

func TestRateLimited_DelegatesAndHonoursContext(t *testing.T) {
	inner := &countingClient{}
	limited := NewRateLimited(inner, 1000, 1)

	out, err := limited.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
	assert.Equal(t, "unknown", limited.Model())

	// A very slow limiter with its burst spent must give up when the context is done
	slow := NewRateLimited(inner, 0.001, 1)
	_, _ = slow.Complete(context.Background(), "first")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.Complete(ctx, "second")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}
