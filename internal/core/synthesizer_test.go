// ABOUTME: Tests for context assembly and answer synthesis
// ABOUTME: Block format, budget truncation and LLM fallbacks
package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/llm/llmtest"
	"github.com/harper/bookrag/internal/logging"
	"github.com/harper/bookrag/internal/models"
)

func sampleResults() []models.RetrievalResult {
	section := 1
	chunk := 4
	return []models.RetrievalResult{
		{Content: "The whole story.", Metadata: models.ResultMetadata{Type: models.SourceBookSummary, DocID: "bookA", Source: "moby.txt"}},
		{Content: "  Part two.  ", Metadata: models.ResultMetadata{Type: models.SourceChapterSummary, DocID: "bookA", Source: "moby.txt", SectionIndex: &section}},
		{Content: "Call me Ishmael.", Metadata: models.ResultMetadata{Type: models.SourceChunk, DocID: "bookA", ChunkIndex: &chunk}},
	}
}

func TestBuildContextFormat(t *testing.T) {
	s := NewSynthesizer(nil, 0, logging.Nop())
	got := s.BuildContext(sampleResults(), models.QueryMixed)

	want := "Query Type: MIXED\n====================\n" +
		"--- Block 1 (BOOK_SUMMARY) ---\nSource: moby.txt | Section: N/A\nThe whole story.\n\n" +
		"--- Block 2 (CHAPTER_SUMMARY) ---\nSource: moby.txt | Section: 1\nPart two.\n\n" +
		"--- Block 3 (CHUNK) ---\nSource: Unknown | Section: N/A\nCall me Ishmael."
	assert.Equal(t, want, got)
}

func TestBuildContextBudget(t *testing.T) {
	big := strings.Repeat("x", 900)
	results := []models.RetrievalResult{result(big), result(big + "y"), result(big + "z")}

	s := NewSynthesizer(nil, 2000, logging.Nop())
	got := s.BuildContext(results, models.QuerySpecific)

	assert.Contains(t, got, "--- Block 1 (CHUNK) ---")
	assert.Contains(t, got, "--- Block 2 (CHUNK) ---")
	assert.NotContains(t, got, "--- Block 3")
	assert.True(t, strings.HasSuffix(got, "\n\n"+TruncationMarker))
}

func TestBuildContextFirstBlockOverBudget(t *testing.T) {
	s := NewSynthesizer(nil, 10, logging.Nop())
	got := s.BuildContext([]models.RetrievalResult{result("far more than ten characters")}, models.QuerySpecific)
	assert.Equal(t, "Query Type: SPECIFIC\n====================\n"+TruncationMarker, got)
}

func TestSynthesizeWithoutClientReturnsContext(t *testing.T) {
	s := NewSynthesizer(nil, 0, logging.Nop())
	got, err := s.Synthesize(context.Background(), "q", sampleResults(), models.QueryBroad, "")
	require.NoError(t, err)
	assert.Equal(t, s.BuildContext(sampleResults(), models.QueryBroad), got)
}

func TestSynthesizePromptShape(t *testing.T) {
	client := llmtest.Fixed("  Ishmael narrates.  ")
	s := NewSynthesizer(client, 0, logging.Nop())

	got, err := s.Synthesize(context.Background(), "Who narrates?", sampleResults(), models.QueryBroad, "")
	require.NoError(t, err)
	assert.Equal(t, "Ishmael narrates.", got)

	prompt := client.Prompts()[0]
	assert.True(t, strings.HasPrefix(prompt, DefaultInstruction))
	assert.Contains(t, prompt, "--- Block 3 (CHUNK) ---")
	assert.True(t, strings.HasSuffix(prompt, "Question: Who narrates?\n\nAnswer:"))

	_, err = s.Synthesize(context.Background(), "Who?", sampleResults(), models.QueryBroad, "Be brief.")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(client.Prompts()[1], "Be brief.\n\nContext:\n"))
}

func TestSynthesizeError(t *testing.T) {
	boom := errors.New("rate limited")
	s := NewSynthesizer(llmtest.Failing(boom), 0, logging.Nop())
	_, err := s.Synthesize(context.Background(), "q", sampleResults(), models.QuerySpecific, "")

	var ee *EnrichmentError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, StageSynthesis, ee.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestNoResultsMessage(t *testing.T) {
	assert.Equal(t, "No relevant information found for 'who?' in the book(s).", NoResultsMessage("who?"))
}
