// ABOUTME: Tests for LLM entity extraction and applying it to the graph
// ABOUTME: Fenced replies, malformed output, client failures and dropped unknown endpoints
package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/llm/llmtest"
	"github.com/harper/bookrag/internal/logging"
)

const extractionReply = "Sure! Here it is:\n```json\n" + `{
  "entities": [
    {"name": "Ahab", "type": "person", "description": "Captain of the Pequod"},
    {"name": "Pequod", "type": "object", "description": "A whaling ship"}
  ],
  "relationships": [
    {"source": "Ahab", "target": "Pequod", "relation": "commands", "description": "He is its captain"},
    {"source": "Ahab", "target": "Nantucket", "relation": "from"}
  ]
}` + "\n```"

func TestExtractParsesFencedReply(t *testing.T) {
	client := llmtest.Fixed(extractionReply)
	ex := NewExtractor(client, nil, logging.Nop())

	out, err := ex.Extract(context.Background(), "Ahab commands the Pequod.")
	require.NoError(t, err)
	assert.Len(t, out.Entities, 2)
	assert.Len(t, out.Relationships, 2)
	assert.Contains(t, client.Prompts()[0], "Ahab commands the Pequod.")
}

func TestExtractMalformedOutput(t *testing.T) {
	ex := NewExtractor(llmtest.Fixed("I could not find any entities."), nil, logging.Nop())
	_, err := ex.Extract(context.Background(), "summary")
	assert.Error(t, err)
}

func TestExtractClientFailure(t *testing.T) {
	boom := errors.New("timeout")
	ex := NewExtractor(llmtest.Failing(boom), nil, logging.Nop())
	_, err := ex.Extract(context.Background(), "summary")
	assert.ErrorIs(t, err, boom)
}

func TestExtractWithoutClient(t *testing.T) {
	ex := NewExtractor(nil, nil, logging.Nop())
	_, err := ex.Extract(context.Background(), "summary")
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestApplyDropsUnknownEndpoints(t *testing.T) {
	ex := NewExtractor(llmtest.Fixed(extractionReply), nil, logging.Nop())
	out, err := ex.Extract(context.Background(), "summary")
	require.NoError(t, err)

	s := NewStore()
	res := Apply(s, out)
	assert.Equal(t, ApplyResult{Nodes: 2, Edges: 1}, res)

	n, ok := s.Node("Ahab")
	require.True(t, ok)
	assert.Equal(t, "PERSON", n.Type)

	again := Apply(s, out)
	assert.Equal(t, ApplyResult{}, again, "second apply adds nothing")
}
