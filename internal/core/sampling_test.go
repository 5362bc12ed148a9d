// ABOUTME: Tests for diversified sampling across the narrative arc
// ABOUTME: Band coverage, quotas and ordering
package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/models"
)

func pool(n int) []models.ScoredChunk {
	out := make([]models.ScoredChunk, n)
	for i := 0; i < n; i++ {
		// reverse start order so sorting is exercised
		idx := n - 1 - i
		out[i] = models.ScoredChunk{
			Chunk: models.Chunk{ChunkIndex: idx, StartChar: idx * 1000, EndChar: idx*1000 + 1000},
			Score: float64((idx*7)%11) / 10,
		}
	}
	return out
}

func TestDiversifiedSampleCoversAllThirds(t *testing.T) {
	got := DiversifiedSample(pool(30), 9)
	require.Len(t, got, 9)

	var bands [3]int
	for i, c := range got {
		bands[c.StartChar/10000]++
		if i > 0 {
			assert.Less(t, got[i-1].StartChar, c.StartChar, "sample is in narrative order")
		}
	}
	assert.Equal(t, [3]int{3, 3, 3}, bands)
}

func TestDiversifiedSamplePrefersBestScoresWithinBand(t *testing.T) {
	chunks := []models.ScoredChunk{
		{Chunk: models.Chunk{StartChar: 0}, Score: 0.1},
		{Chunk: models.Chunk{StartChar: 1}, Score: 0.9},
		{Chunk: models.Chunk{StartChar: 2}, Score: 0.5},
		{Chunk: models.Chunk{StartChar: 3}, Score: 0.2},
		{Chunk: models.Chunk{StartChar: 4}, Score: 0.3},
		{Chunk: models.Chunk{StartChar: 5}, Score: 0.8},
	}
	got := DiversifiedSample(chunks, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 5}, []int{got[0].StartChar, got[1].StartChar, got[2].StartChar})
}

func TestDiversifiedSampleRemainderGoesToLastBand(t *testing.T) {
	got := DiversifiedSample(pool(30), 11)
	require.Len(t, got, 11)
	var last int
	for _, c := range got {
		if c.StartChar >= 20000 {
			last++
		}
	}
	assert.Equal(t, 5, last)
}

func TestDiversifiedSampleFillsShortBand(t *testing.T) {
	got := DiversifiedSample(pool(9), 8)
	assert.Len(t, got, 8)
}

func TestDiversifiedSampleSmallPoolUnchanged(t *testing.T) {
	p := pool(5)
	got := DiversifiedSample(p, 15)
	assert.Equal(t, p, got)
}
