// ABOUTME: Embeddings over the OpenAI embeddings API, also served by Ollama's /v1 endpoint
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/util"
)

// OpenAIConfig holds configuration for the OpenAI-compatible embedding provider
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// OpenAIProvider calls CreateEmbeddings
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dim        int
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewOpenAIProvider creates the provider. Dimension is learned when New probes it.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required: %w", models.ErrEmbeddingUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

// Name returns the embedding model
func (p *OpenAIProvider) Name() string { return p.model }

// Dimension returns the vector length observed from the model
func (p *OpenAIProvider) Dimension() int { return p.dim }

func (p *OpenAIProvider) setDimension(d int) { p.dim = d }

// Embed embeds a single text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request, preserving order
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var out [][]float64

	err := util.Retry(ctx, p.maxRetries, p.retryDelay, p.timeout, func(ctx context.Context) error {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: openai.EmbeddingModel(p.model),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return errors.New("embedding count does not match input count")
		}

		out = make([][]float64, len(texts))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(texts) {
				return fmt.Errorf("embedding index %d out of range", d.Index)
			}
			out[d.Index] = toFloat64(d.Embedding)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding with %s: %w", p.model, err)
	}

	return out, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
