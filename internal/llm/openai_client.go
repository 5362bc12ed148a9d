// ABOUTME: OpenAI-compatible chat completion client used for OpenAI and Ollama
// ABOUTME: Retries with jittered backoff and a per-attempt timeout
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/util"
)

// DefaultChatModel is the default model for OpenAI chat completions
const DefaultChatModel = "gpt-4o-mini"

// OpenAIConfig holds configuration for the OpenAI-compatible client
type OpenAIConfig struct {
	APIKey string
	// BaseURL points at an OpenAI-compatible server such as Ollama's /v1 endpoint
	BaseURL     string
	Model       string
	Temperature float32
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// OpenAIClient wraps the go-openai client with retry logic
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxRetries  int
	retryDelay  time.Duration
	timeout     time.Duration
}

// NewOpenAIClient creates a client; an API key is required unless BaseURL is set
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required: %w", models.ErrLLMUnavailable)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		timeout:     cfg.Timeout,
	}, nil
}

// Model returns the chat model name
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	var content string

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, c.timeout, func(ctx context.Context) error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: c.temperature,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion with %s: %w", c.model, err)
	}

	return content, nil
}
