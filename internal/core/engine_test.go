// ABOUTME: End-to-end engine tests over an in-memory store
// ABOUTME: Ingestion, query strategies, ask fallbacks and concurrency
package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/llm/llmtest"
	"github.com/harper/bookrag/internal/models"
)

func TestScenarioLongBookIngestion(t *testing.T) {
	ctx := context.Background()
	client := scripted()
	e := newTestEngine(t, client)

	report, err := e.AddContent(ctx, bookText(60000), "moby.txt", "bookA")
	require.NoError(t, err)

	assert.False(t, report.Skipped)
	assert.Equal(t, 75, report.Chunks)
	assert.Equal(t, 2, report.Sections)
	assert.True(t, report.MasterSummary)
	assert.Equal(t, 3, report.Entities)
	assert.Equal(t, 2, report.Relations)
	assert.Empty(t, report.EnrichmentErrors)

	chapters, err := e.Storage().Summaries().CountFor(ctx, "bookA", models.SummaryTypeChapter)
	require.NoError(t, err)
	assert.Equal(t, 2, chapters)
	books, err := e.Storage().Summaries().CountFor(ctx, "bookA", models.SummaryTypeBook)
	require.NoError(t, err)
	assert.Equal(t, 1, books)

	assert.Equal(t, 2, client.CountContaining("You are summarizing part"))
	assert.Equal(t, 1, client.CountContaining("Below are summaries"))
	assert.Equal(t, 2, client.CountContaining("Extract the key entities"))
}

func TestScenarioBroadQuery(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, scripted())

	_, err := e.AddContent(ctx, bookText(60000), "moby.txt", "bookA")
	require.NoError(t, err)
	_, err = e.AddContent(ctx, bookText(3000), "other.txt", "bookB")
	require.NoError(t, err)

	resp, err := e.Query(ctx, QueryOptions{Query: "Who is the protagonist?", DocID: "bookA", Type: models.QueryBroad})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	var masters, chunks int
	for _, r := range resp.Results {
		assert.Equal(t, "bookA", r.Metadata.DocID)
		switch r.Metadata.Type {
		case models.SourceBookSummary:
			masters++
		case models.SourceChunk:
			chunks++
		default:
			t.Errorf("unexpected result type %s", r.Metadata.Type)
		}
	}
	assert.Equal(t, 1, masters)
	assert.LessOrEqual(t, chunks, 15)
	assert.Equal(t, models.SourceBookSummary, resp.Results[0].Metadata.Type)
	assert.False(t, resp.Classified)
}

func TestScenarioReingestIsNoop(t *testing.T) {
	ctx := context.Background()
	client := scripted()
	e := newTestEngine(t, client)

	_, err := e.AddContent(ctx, bookText(60000), "moby.txt", "bookA")
	require.NoError(t, err)
	calls := len(client.Prompts())

	report, err := e.AddContent(ctx, bookText(60000), "moby.txt", "bookA")
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, 0, report.Chunks)
	assert.Len(t, client.Prompts(), calls, "skipped ingestion must not call the model")

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 75, stats.TotalChunks)
	assert.Equal(t, 3, stats.TotalSummaries)
	assert.Equal(t, []string{"bookA"}, stats.IndexedDocIDs)
}

func TestScenarioGraphUnknownEntity(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, scripted())

	resp, err := e.Query(ctx, QueryOptions{Query: "What does Queequeg carve?", Type: models.QueryGraph})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results, "empty graph")

	_, err = e.AddContent(ctx, bookText(60000), "moby.txt", "bookA")
	require.NoError(t, err)

	resp, err = e.Query(ctx, QueryOptions{Query: "What does Queequeg carve?", Type: models.QueryGraph})
	require.NoError(t, err)
	assert.Empty(t, resp.Results, "entity not in graph")

	resp, err = e.Query(ctx, QueryOptions{Query: "Who does Ahab hunt?", Type: models.QueryGraph})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, models.SourceGraph, resp.Results[0].Metadata.Type)
	assert.Contains(t, resp.Results[0].Content, "Ahab hunts Moby Dick")
}

func TestConcurrentIngestionOfSameDoc(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	text := bookText(8000)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		skipped int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := e.AddContent(ctx, text, "dup.txt", "dup")
			assert.NoError(t, err)
			if report.Skipped {
				mu.Lock()
				skipped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, skipped)
	n, err := e.Storage().Chunks().CountFor(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestAskWithoutLLMReturnsContext(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)

	report, err := e.AddContent(ctx, bookText(12000), "book.txt", "bookA")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sections, "no summaries without a model")

	ans, err := e.Ask(ctx, AskOptions{QueryOptions: QueryOptions{Query: "Tell me about the harpoon"}})
	require.NoError(t, err)
	assert.Equal(t, models.QuerySpecific, ans.Type)
	assert.Equal(t, 1.0, ans.Confidence)
	assert.False(t, ans.Synthesized)
	assert.Equal(t, ans.Context, ans.Text)
	assert.True(t, strings.HasPrefix(ans.Text, "Query Type: SPECIFIC\n===================="))
	assert.Equal(t, "none", e.ModelName())
}

func TestAskSynthesizesWithClassifier(t *testing.T) {
	ctx := context.Background()
	client := scripted()
	e := newTestEngine(t, client)

	_, err := e.AddContent(ctx, bookText(60000), "moby.txt", "bookA")
	require.NoError(t, err)

	ans, err := e.Ask(ctx, AskOptions{
		QueryOptions: QueryOptions{Query: "What is the book about?", Type: models.QueryAuto},
		Prompt:       "Answer like a sailor.",
	})
	require.NoError(t, err)
	assert.True(t, ans.Classified)
	assert.Equal(t, models.QueryBroad, ans.Type)
	assert.Equal(t, 15, ans.K)
	assert.True(t, ans.Synthesized)
	assert.Equal(t, "An answer drawn from the context.", ans.Text)
	assert.Equal(t, 1, client.CountContaining("Answer like a sailor."))
}

func TestAskNoResults(t *testing.T) {
	e := newTestEngine(t, scripted())
	ans, err := e.Ask(context.Background(), AskOptions{QueryOptions: QueryOptions{Query: "anything", Type: models.QuerySpecific}})
	require.NoError(t, err)
	assert.Equal(t, "No relevant information found for 'anything' in the book(s).", ans.Text)
}

func TestAskFallsBackWhenSynthesisFails(t *testing.T) {
	ctx := context.Background()
	client := llmtest.New(func(prompt string) (string, error) {
		if strings.Contains(prompt, "Question:") {
			return "", errors.New("model overloaded")
		}
		return bookResponder(prompt)
	})
	e := newTestEngine(t, client)

	_, err := e.AddContent(ctx, bookText(3000), "short.txt", "bookA")
	require.NoError(t, err)

	ans, err := e.Ask(ctx, AskOptions{QueryOptions: QueryOptions{Query: "whale", Type: models.QuerySpecific}})
	require.NoError(t, err)
	assert.False(t, ans.Synthesized)
	assert.Equal(t, ans.Context, ans.Text)
}

func TestQueryRejectsEmpty(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Query(context.Background(), QueryOptions{Query: "   "})
	assert.Error(t, err)
}

func TestQueryUnknownTypeUsesSpecific(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)

	_, err := e.AddContent(ctx, bookText(3000), "short.txt", "bookA")
	require.NoError(t, err)

	resp, err := e.Query(ctx, QueryOptions{Query: "whale", Type: models.QueryType("FUZZY")})
	require.NoError(t, err)
	assert.Equal(t, models.QuerySpecific, resp.Type)
	assert.Equal(t, 25, resp.K)
	assert.False(t, resp.Classified)
	assert.NotEmpty(t, resp.Results)
}
