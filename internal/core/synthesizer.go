// ABOUTME: Answer synthesizer: labels retrieved blocks into a budgeted context and asks the LLM
// ABOUTME: Without a model the assembled context itself is the answer
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/util"
)

// DefaultContextBudget is the maximum number of characters of blocks in a context
const DefaultContextBudget = 15000

// TruncationMarker ends a context that hit the budget
const TruncationMarker = "[Context truncated due to token budget]"

// DefaultInstruction is used when the caller gives no prompt
const DefaultInstruction = `You are a careful literary analyst. Answer the question using only the numbered context blocks from the book(s) below. Chapter and book summaries give the overall story, chunks give exact passages, and graph entries describe characters and their relationships. Refer to block numbers where it helps. If the context does not contain the answer, say so plainly.`

// NoResultsMessage is the reply when retrieval found nothing
func NoResultsMessage(query string) string {
	return fmt.Sprintf("No relevant information found for '%s' in the book(s).", query)
}

// Synthesizer turns retrieval results into an answer
type Synthesizer struct {
	client llm.Client
	budget int
	logger *log.Logger
}

// NewSynthesizer creates a Synthesizer. client may be nil.
func NewSynthesizer(client llm.Client, budget int, logger *log.Logger) *Synthesizer {
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	return &Synthesizer{client: client, budget: budget, logger: logger}
}

// BuildContext formats results as numbered blocks under a header naming the query type.
// Blocks are added until the next one would exceed the budget, then the marker is appended.
func (s *Synthesizer) BuildContext(results []models.RetrievalResult, queryType models.QueryType) string {
	blocks := make([]string, 0, len(results))
	total := 0
	for i, r := range results {
		block := formatBlock(i+1, r)
		size := util.RuneLen(block)
		if total+size > s.budget {
			blocks = append(blocks, TruncationMarker)
			break
		}
		blocks = append(blocks, block)
		total += size
	}

	intro := fmt.Sprintf("Query Type: %s\n%s\n", queryType, strings.Repeat("=", 20))
	return intro + strings.Join(blocks, "\n\n")
}

func formatBlock(n int, r models.RetrievalResult) string {
	typ := strings.ToUpper(string(r.Metadata.Type))
	if typ == "" {
		typ = "CHUNK"
	}
	source := r.Metadata.Source
	if source == "" {
		source = "Unknown"
	}
	section := "N/A"
	if r.Metadata.SectionIndex != nil {
		section = fmt.Sprintf("%d", *r.Metadata.SectionIndex)
	}
	return fmt.Sprintf("--- Block %d (%s) ---\nSource: %s | Section: %s\n%s",
		n, typ, source, section, strings.TrimSpace(r.Content))
}

// Synthesize asks the model to answer query from the results. customPrompt replaces
// DefaultInstruction when set. With no model configured the context is returned as is.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []models.RetrievalResult, queryType models.QueryType, customPrompt string) (string, error) {
	contextText := s.BuildContext(results, queryType)
	if s.client == nil {
		return contextText, nil
	}

	instruction := strings.TrimSpace(customPrompt)
	if instruction == "" {
		instruction = DefaultInstruction
	}
	prompt := fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:", instruction, contextText, query)

	s.logger.Debug().Int("prompt_chars", len(prompt)).Int("blocks", len(results)).Msg("synthesizing answer")
	answer, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return "", &EnrichmentError{Stage: StageSynthesis, Section: NoSection, Err: err}
	}
	return strings.TrimSpace(answer), nil
}
