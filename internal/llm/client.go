// ABOUTME: Completion client contract and provider factory
// ABOUTME: Selects Ollama, OpenAI, Anthropic or Gemini from config and applies rate limiting
package llm

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/models"
)

// Client is the single capability the engine needs from a language model
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by clients that can report which model they call
type Named interface {
	Model() string
}

// ModelName returns the model behind c, or "none"
func ModelName(c Client) string {
	if c == nil {
		return "none"
	}
	if n, ok := c.(Named); ok {
		return n.Model()
	}
	return "unknown"
}

// New builds the configured client. Provider "none" returns a nil client and no error.
// Any error means the caller should continue without an LLM.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (Client, error) {
	var (
		client Client
		err    error
	)

	switch cfg.LLMProvider {
	case "none":
		return nil, nil
	case "ollama":
		client, err = NewOpenAIClient(OpenAIConfig{
			APIKey:     "ollama",
			BaseURL:    cfg.OllamaURL(),
			Model:      cfg.OllamaModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	case "openai":
		client, err = NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			Model:      cfg.OpenAIModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	case "anthropic":
		client, err = NewAnthropicClient(AnthropicConfig{
			APIKey:     cfg.AnthropicKey,
			Model:      cfg.AnthropicModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	case "gemini":
		client, err = NewGeminiClient(ctx, GeminiConfig{
			APIKey:     cfg.GeminiKey,
			Model:      cfg.GeminiModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q: %w", cfg.LLMProvider, models.ErrLLMUnavailable)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("provider", cfg.LLMProvider).Str("model", ModelName(client)).Msg("llm client ready")

	if cfg.RequestsPerSecond > 0 {
		return NewRateLimited(client, cfg.RequestsPerSecond, 1), nil
	}
	return client, nil
}
