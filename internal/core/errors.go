// ABOUTME: Typed errors for enrichment steps that degrade instead of failing ingestion
// ABOUTME: Summaries, graph extraction and classification report EnrichmentError values
package core

import (
	"errors"
	"fmt"

	"github.com/harper/bookrag/internal/models"
)

var (
	errNoLLM         = models.ErrLLMUnavailable
	errEmptyResponse = errors.New("model returned an empty response")
)

// Stage names the enrichment step that failed
type Stage string

const (
	StageSectionSummary  Stage = "section_summary"
	StageMasterSummary   Stage = "master_summary"
	StageGraphExtraction Stage = "graph_extraction"
	StageClassification  Stage = "classification"
	StageSynthesis       Stage = "synthesis"
)

// NoSection marks an EnrichmentError that is not tied to one section
const NoSection = -1

// EnrichmentError records a skipped enrichment. It is logged and counted, never returned
// from AddDocument or Query.
type EnrichmentError struct {
	Stage   Stage
	DocID   string
	Section int
	Err     error
}

func (e *EnrichmentError) Error() string {
	if e.Section == NoSection {
		return fmt.Sprintf("%s for %q skipped: %v", e.Stage, e.DocID, e.Err)
	}
	return fmt.Sprintf("%s for %q section %d skipped: %v", e.Stage, e.DocID, e.Section, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}
