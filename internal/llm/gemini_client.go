// ABOUTME: Gemini completion client built on the google genai SDK
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/util"
)

// GeminiConfig holds configuration for the Gemini client
type GeminiConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// GeminiClient calls Models.GenerateContent
type GeminiClient struct {
	client     *genai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewGeminiClient creates a client against the Gemini API backend
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", models.ErrLLMUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

// Model returns the model name
func (c *GeminiClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user turn
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}

	var text string
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, c.timeout, func(ctx context.Context) error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
		if err != nil {
			return err
		}
		text = resp.Text()
		if text == "" {
			return errors.New("empty response")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini completion with %s: %w", c.model, err)
	}

	return text, nil
}
