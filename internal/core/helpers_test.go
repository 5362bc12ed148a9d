// ABOUTME: Shared fixtures for core tests
// ABOUTME: Scripted LLM responder, generated book text and in-memory engines
package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/embedding"
	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/llm/llmtest"
	"github.com/harper/bookrag/internal/logging"
	"github.com/harper/bookrag/internal/storage"
)

const extractionJSON = `{"entities": [
  {"name": "Ahab", "type": "PERSON", "description": "Captain of the Pequod, obsessed with the white whale"},
  {"name": "Moby Dick", "type": "CREATURE", "description": "The white whale"},
  {"name": "Pequod", "type": "OBJECT", "description": "A Nantucket whaling ship"}
], "relationships": [
  {"source": "Ahab", "target": "Moby Dick", "relation": "hunts", "description": "Ahab swears revenge"},
  {"source": "Ahab", "target": "Pequod", "relation": "commands"}
]}`

// bookResponder answers each prompt kind used during ingestion and querying
func bookResponder(prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "You are summarizing part"):
		return "Captain Ahab drives the Pequod after the white whale.", nil
	case strings.Contains(prompt, "Below are summaries"):
		return "The protagonist Ishmael tells of Ahab's doomed hunt for Moby Dick.", nil
	case strings.Contains(prompt, "Extract the key entities"):
		return "Here you go:\n```json\n" + extractionJSON + "\n```", nil
	case strings.Contains(prompt, "Classify this query"):
		return `{"type": "BROAD", "confidence": 0.9}`, nil
	default:
		return "An answer drawn from the context.", nil
	}
}

// bookText returns exactly n ASCII characters of varied prose
func bookText(n int) string {
	words := []string{"sea", "whale", "ship", "harpoon", "storm", "captain", "crew", "island", "oil", "rope"}
	var b strings.Builder
	for i := 0; b.Len() < n; i++ {
		fmt.Fprintf(&b, "Line %d speaks of the %s and the %s. ", i, words[i%len(words)], words[(i*7)%len(words)])
	}
	return b.String()[:n]
}

func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.OpenInMemory(embedding.NewFake(128), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestEngine(t *testing.T, client llm.Client) *Engine {
	t.Helper()
	e, err := NewEngine(newTestStore(t), client, config.Default(), logging.Nop())
	require.NoError(t, err)
	return e
}

func scripted() *llmtest.Client {
	return llmtest.New(bookResponder)
}
