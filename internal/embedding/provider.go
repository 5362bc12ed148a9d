// ABOUTME: Embedding provider contract and construction with degraded fallback
// ABOUTME: If the preferred model cannot be reached, a deterministic pseudo-embedding takes over
package embedding

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/models"
)

// Provider turns text into fixed-dimension vectors
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
	Name() string
}

// BatchProvider is implemented by providers that can embed many texts per request
type BatchProvider interface {
	Provider
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

const batchSize = 64

// EmbedAll embeds texts in order, batching when the provider supports it
func EmbedAll(ctx context.Context, p Provider, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))

	if bp, ok := p.(BatchProvider); ok {
		for start := 0; start < len(texts); start += batchSize {
			end := min(start+batchSize, len(texts))
			vecs, err := bp.EmbedBatch(ctx, texts[start:end])
			if err != nil {
				return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
			}
			if len(vecs) != end-start {
				return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors", start, end, len(vecs))
			}
			out = append(out, vecs...)
		}
		return out, nil
	}

	for i, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		out = append(out, vec)
	}
	return out, nil
}

// New builds the configured provider and probes it once. On any failure it logs a
// warning and returns a Fake provider. fallbackDim is the dimension already stored
// in the corpus, if known; otherwise the configured dimension is used.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, fallbackDim int) Provider {
	dim := cfg.EmbeddingDimension
	if fallbackDim > 0 {
		dim = fallbackDim
	}

	if cfg.EmbeddingProvider == "fake" {
		return NewFake(dim)
	}

	preferred, err := newPreferred(ctx, cfg)
	if err == nil {
		err = probe(ctx, preferred)
	}
	if err != nil {
		logger.Warn().Err(err).
			Str("provider", cfg.EmbeddingProvider).
			Str("model", cfg.EmbeddingModel).
			Int("dimension", dim).
			Msg("embedding model unavailable, using deterministic fake embeddings")
		return NewFake(dim)
	}

	if fallbackDim > 0 && preferred.Dimension() != fallbackDim {
		logger.Warn().
			Str("model", preferred.Name()).
			Int("model_dimension", preferred.Dimension()).
			Int("corpus_dimension", fallbackDim).
			Msg("embedding dimension differs from the indexed corpus; similarity scores will be zero until reindexed")
	}

	logger.Debug().Str("model", preferred.Name()).Int("dimension", preferred.Dimension()).Msg("embedding provider ready")
	return preferred
}

func newPreferred(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.EmbeddingProvider {
	case "ollama":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:     "ollama",
			BaseURL:    cfg.OllamaURL(),
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	case "gemini":
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:     cfg.GeminiKey,
			Model:      cfg.EmbeddingModel,
			Dimension:  cfg.EmbeddingDimension,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.EmbeddingProvider, models.ErrEmbeddingUnavailable)
	}
}

type dimensionSetter interface {
	setDimension(int)
}

func probe(ctx context.Context, p Provider) error {
	vec, err := p.Embed(ctx, "dimension probe")
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
	}
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", models.ErrEmbeddingUnavailable)
	}
	if ds, ok := p.(dimensionSetter); ok {
		ds.setDimension(len(vec))
	}
	return nil
}
