// ABOUTME: Tests for the sliding-window splitter
// ABOUTME: Ordering, overlap, short input and trailing content
package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(0, 0)
	assert.Error(t, err)
	_, err = New(100, 100)
	assert.Error(t, err)
	_, err = New(100, -1)
	assert.Error(t, err)

	s, err := New(100, 20)
	require.NoError(t, err)
	assert.Equal(t, 100, s.Size())
	assert.Equal(t, 20, s.Overlap())
}

func TestSplit_ShortContentIsOneChunk(t *testing.T) {
	s := Default()
	for _, n := range []int{1, 999, 1000} {
		chunks := s.Split(strings.Repeat("a", n), "doc")
		require.Len(t, chunks, 1, "length %d", n)
		assert.Equal(t, 0, chunks[0].StartChar)
		assert.Equal(t, n, chunks[0].EndChar)
		assert.Equal(t, 0, chunks[0].ChunkIndex)
	}
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Default().Split("", "doc"))
	assert.Equal(t, 0, Default().Count(0))
}

func TestSplit_OrderingAndOverlap(t *testing.T) {
	s := Default()
	content := strings.Repeat("abcdefghij", 560) // 5600 runes
	chunks := s.Split(content, "bookA")

	require.Len(t, chunks, s.Count(5600))
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, "bookA", c.DocID)
		assert.Equal(t, content[c.StartChar:c.EndChar], c.Content)
		assert.LessOrEqual(t, c.Len(), 1000)

		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		assert.Greater(t, c.StartChar, prev.StartChar, "chunks must be ordered by start")
		assert.Equal(t, 200, prev.EndChar-c.StartChar, "consecutive chunks overlap by 200")
	}

	// Trailing content is never dropped
	assert.Equal(t, 5600, chunks[len(chunks)-1].EndChar)
}

func TestSplit_SixtyThousandChars(t *testing.T) {
	s := Default()
	chunks := s.Split(strings.Repeat("x", 60000), "bookA")

	// Windows start every 800 runes; the 75th starts at 59200 and ends at 60000
	assert.Len(t, chunks, 75)
	assert.Equal(t, 75, s.Count(60000))
	last := chunks[len(chunks)-1]
	assert.Equal(t, 59200, last.StartChar)
	assert.Equal(t, 60000, last.EndChar)
}

func TestSplit_RuneOffsets(t *testing.T) {
	s, err := New(4, 1)
	require.NoError(t, err)

	chunks := s.Split("héllo wörld", "doc")
	require.NotEmpty(t, chunks)
	assert.Equal(t, "héll", chunks[0].Content)
	assert.Equal(t, "lo w", chunks[1].Content)
	assert.Equal(t, 3, chunks[1].StartChar)
}

func TestSplit_Deterministic(t *testing.T) {
	content := strings.Repeat("The quick brown fox. ", 300)
	a := Default().Split(content, "d")
	b := Default().Split(content, "d")
	assert.Equal(t, a, b)
}

func TestCount_MatchesSplit(t *testing.T) {
	s, err := New(10, 3)
	require.NoError(t, err)
	for n := 1; n < 200; n++ {
		assert.Len(t, s.Split(strings.Repeat("z", n), "d"), s.Count(n), "n=%d", n)
	}
}
