// ABOUTME: Query classifier picking a retrieval strategy with one LLM call
// ABOUTME: Anything uncertain falls back to SPECIFIC, which only needs vector search
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/models"
)

const classifyPrompt = `Classify this query about a book as one of:
- "BROAD": needs full story context, themes, or the overall arc
- "SPECIFIC": needs precise facts, quotes, or events
- "GRAPH": asks how named characters, places, or groups relate to each other
- "MIXED": needs both the overall story and specific details
Return ONLY a JSON object: {"type": "BROAD"|"SPECIFIC"|"GRAPH"|"MIXED", "confidence": 0-1}
Query: %s`

// fallbackConfidence is reported when the model call or its parsing fails
const fallbackConfidence = 0.5

// DefaultClassifierThreshold is the confidence below which SPECIFIC is chosen
const DefaultClassifierThreshold = 0.7

type classification struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Classifier maps a query to a QueryType
type Classifier struct {
	client    llm.Client
	parser    llm.Parser
	threshold float64
	logger    *log.Logger
}

// NewClassifier creates a Classifier. A nil client always yields SPECIFIC with confidence 1.
func NewClassifier(client llm.Client, parser llm.Parser, threshold float64, logger *log.Logger) *Classifier {
	if parser == nil {
		parser = llm.LenientParser{Flat: true}
	}
	if threshold <= 0 {
		threshold = DefaultClassifierThreshold
	}
	return &Classifier{client: client, parser: parser, threshold: threshold, logger: logger}
}

// Classify returns the strategy for query and the model's confidence in it
func (c *Classifier) Classify(ctx context.Context, query string) (models.QueryType, float64) {
	if c.client == nil {
		return models.QuerySpecific, 1.0
	}

	resp, err := c.client.Complete(ctx, fmt.Sprintf(classifyPrompt, query))
	if err != nil {
		c.fallback(err)
		return models.QuerySpecific, fallbackConfidence
	}
	c.logger.Debug().Str("response", resp).Msg("classifier response")

	var out classification
	if err := c.parser.ParseObject(resp, &out); err != nil {
		c.fallback(err)
		return models.QuerySpecific, fallbackConfidence
	}

	if out.Confidence < c.threshold {
		return models.QuerySpecific, out.Confidence
	}
	qt := models.QueryType(strings.ToUpper(strings.TrimSpace(out.Type)))
	if !qt.IsValid() {
		c.logger.Warn().Str("type", out.Type).Msg("classifier returned unknown type, using SPECIFIC")
		return models.QuerySpecific, out.Confidence
	}
	return qt, out.Confidence
}

func (c *Classifier) fallback(err error) {
	e := &EnrichmentError{Stage: StageClassification, Section: NoSection, Err: err}
	c.logger.Warn().Err(e).Msg("query classification failed, using SPECIFIC")
}
