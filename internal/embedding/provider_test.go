// ABOUTME: Tests for embedding provider construction, fallback and the fake embedder
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/logging"
)

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestFake_DeterministicAndNormalized(t *testing.T) {
	f := NewFake(64)
	ctx := context.Background()

	a, err := f.Embed(ctx, "Captain Ahab hunts the white whale")
	require.NoError(t, err)
	b, err := f.Embed(ctx, "Captain Ahab hunts the white whale")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, cosine(a, a), 1e-9)
	assert.Equal(t, "fake-deterministic-64", f.Name())
}

func TestFake_LexicalOverlapScoresHigher(t *testing.T) {
	f := NewFake(256)
	ctx := context.Background()

	query, _ := f.Embed(ctx, "white whale")
	related, _ := f.Embed(ctx, "the white whale surfaced")
	unrelated, _ := f.Embed(ctx, "tea party in the garden")

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestNew_FallsBackWithWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.EmbeddingProvider = "ollama"
	cfg.OllamaBaseURL = srv.URL + "/v1"
	cfg.MaxRetries = 0

	var logs bytes.Buffer
	p := New(context.Background(), cfg, logging.New("warn", "json", &logs), 0)

	_, isFake := p.(*Fake)
	require.True(t, isFake, "expected fallback to fake embeddings")
	assert.Equal(t, 384, p.Dimension())
	assert.Contains(t, logs.String(), "deterministic fake embeddings")
}

func TestNew_FallbackUsesCorpusDimension(t *testing.T) {
	cfg := config.Default()
	cfg.EmbeddingProvider = "openai"
	cfg.OpenAIKey = ""

	p := New(context.Background(), cfg, logging.Nop(), 1024)
	assert.Equal(t, 1024, p.Dimension())
}

func TestNew_UsesPreferredWhenReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": []float32{float32(i), 1, 0}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "bge-m3"})
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.OllamaBaseURL = srv.URL + "/v1"

	p := New(context.Background(), cfg, logging.Nop(), 0)
	require.IsType(t, &OpenAIProvider{}, p)
	assert.Equal(t, 3, p.Dimension())
	assert.Equal(t, "bge-m3", p.Name())

	vecs, err := EmbedAll(context.Background(), p, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float64{2, 1, 0}, vecs[2])
}

func TestEmbedAll_SingleProvider(t *testing.T) {
	vecs, err := EmbedAll(context.Background(), NewFake(8), []string{"one", "two"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.NotEqual(t, vecs[0], vecs[1])
}
