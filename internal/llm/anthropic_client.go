// ABOUTME: Anthropic Messages API completion client
// ABOUTME: Concatenates the text blocks of the reply into one string
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/util"
)

const defaultAnthropicMaxTokens = 2048

// AnthropicConfig holds configuration for the Anthropic client
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// AnthropicClient calls the Messages API
type AnthropicClient struct {
	client     anthropic.Client
	model      string
	maxTokens  int64
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewAnthropicClient creates a client. Retries are handled here, not by the SDK.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required: %w", models.ErrLLMUnavailable)
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	return &AnthropicClient{
		client:     anthropic.NewClient(opts...),
		model:      cfg.Model,
		maxTokens:  int64(maxTokens),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

// Model returns the model name
func (c *AnthropicClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user turn
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(0.2),
	}

	var text string
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, c.timeout, func(ctx context.Context) error {
		resp, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return err
		}

		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return errors.New("response contained no text blocks")
		}
		text = sb.String()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion with %s: %w", c.model, err)
	}

	return text, nil
}
