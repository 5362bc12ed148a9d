// ABOUTME: LLM-driven extraction of entities and relationships from section summaries
// ABOUTME: Malformed model output is reported as an error so the caller can skip the section
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/models"
)

// ErrNoClient is returned when extraction is attempted without a model
var ErrNoClient = errors.New("graph extraction requires an LLM client")

// Entity is one extracted node
type Entity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Relationship is one extracted edge
type Relationship struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Relation    string `json:"relation"`
	Description string `json:"description"`
}

// Extraction is the structured object the extraction prompt asks for
type Extraction struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

const extractionPrompt = `Extract the key entities (characters, places, organizations, objects, concepts) and the relationships between them from the following book summary.

Return ONLY a JSON object with this shape:
{"entities": [{"name": "...", "type": "PERSON|PLACE|ORGANIZATION|OBJECT|CONCEPT", "description": "..."}],
 "relationships": [{"source": "...", "target": "...", "relation": "...", "description": "..."}]}

Use the exact entity names in relationships.

Summary:
%s`

// Extractor turns a summary into an Extraction
type Extractor struct {
	client llm.Client
	parser llm.Parser
	logger *log.Logger
}

// NewExtractor creates an Extractor. A nil parser means llm.LenientParser{}.
func NewExtractor(client llm.Client, parser llm.Parser, logger *log.Logger) *Extractor {
	if parser == nil {
		parser = llm.LenientParser{}
	}
	return &Extractor{client: client, parser: parser, logger: logger}
}

// Extract runs one model call over summary and parses the reply
func (e *Extractor) Extract(ctx context.Context, summary string) (Extraction, error) {
	if e.client == nil {
		return Extraction{}, ErrNoClient
	}

	prompt := fmt.Sprintf(extractionPrompt, summary)
	e.logger.Debug().Int("prompt_chars", len(prompt)).Msg("extracting graph entities")

	resp, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return Extraction{}, fmt.Errorf("extraction call failed: %w", err)
	}
	e.logger.Debug().Str("response", resp).Msg("extraction response")

	var out Extraction
	if err := e.parser.ParseObject(resp, &out); err != nil {
		return Extraction{}, fmt.Errorf("malformed extraction output: %w", err)
	}
	return out, nil
}

// ApplyResult counts what Apply added
type ApplyResult struct {
	Nodes int
	Edges int
}

// Apply adds all entities, then all relationships, to store.
// Relationships whose endpoints are unknown are dropped by the store.
func Apply(store *Store, ex Extraction) ApplyResult {
	var res ApplyResult
	for _, ent := range ex.Entities {
		node := models.GraphNode{
			Name:        ent.Name,
			Type:        strings.ToUpper(strings.TrimSpace(ent.Type)),
			Description: strings.TrimSpace(ent.Description),
		}
		if store.AddNode(node) {
			res.Nodes++
		}
	}
	for _, rel := range ex.Relationships {
		edge := models.GraphEdge{
			Source:      rel.Source,
			Target:      rel.Target,
			Relation:    rel.Relation,
			Description: strings.TrimSpace(rel.Description),
		}
		if store.AddEdge(edge) {
			res.Edges++
		}
	}
	return res
}
