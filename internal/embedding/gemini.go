// ABOUTME: Embeddings over the Gemini API via the google genai SDK
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/util"
)

// GeminiConfig holds configuration for the Gemini embedding provider
type GeminiConfig struct {
	APIKey     string
	Model      string
	Dimension  int
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// GeminiProvider calls Models.EmbedContent with a fixed output dimensionality
type GeminiProvider struct {
	client     *genai.Client
	model      string
	dim        int
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewGeminiProvider creates the provider
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", models.ErrEmbeddingUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" || model == "bge-m3" {
		model = "text-embedding-004"
	}

	return &GeminiProvider{
		client:     client,
		model:      model,
		dim:        cfg.Dimension,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

// Name returns the embedding model
func (p *GeminiProvider) Name() string { return p.model }

// Dimension returns the requested output dimensionality
func (p *GeminiProvider) Dimension() int { return p.dim }

func (p *GeminiProvider) setDimension(d int) { p.dim = d }

// Embed embeds a single text
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	var vec []float64
	outputDim := int32(p.dim)

	err := util.Retry(ctx, p.maxRetries, p.retryDelay, p.timeout, func(ctx context.Context) error {
		result, err := p.client.Models.EmbedContent(ctx, p.model,
			[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
			&genai.EmbedContentConfig{OutputDimensionality: &outputDim},
		)
		if err != nil {
			return err
		}
		if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
			return errors.New("no embedding returned")
		}
		vec = toFloat64(result.Embeddings[0].Values)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding with %s: %w", p.model, err)
	}

	return vec, nil
}
