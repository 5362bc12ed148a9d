// ABOUTME: Sliding-window text splitter with rune offsets
// ABOUTME: Consecutive chunks overlap and the last window ends at the content end
package splitter

import (
	"fmt"

	"github.com/harper/bookrag/internal/models"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of characters shared by consecutive chunks.
const DefaultChunkOverlap = 200

// Splitter produces chunks of at most size runes. Consecutive chunks share exactly
// overlap runes, and the final chunk always ends at the end of the content.
type Splitter struct {
	size    int
	overlap int
}

// New validates the window and returns a splitter
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Default returns a 1000/200 splitter
func Default() *Splitter {
	return &Splitter{size: DefaultChunkSize, overlap: DefaultChunkOverlap}
}

// Size returns the window size
func (s *Splitter) Size() int { return s.size }

// Overlap returns the overlap between consecutive windows
func (s *Splitter) Overlap() int { return s.overlap }

// Count returns how many chunks Split produces for content of n runes
func (s *Splitter) Count(n int) int {
	if n <= 0 {
		return 0
	}
	if n <= s.size {
		return 1
	}
	stride := s.size - s.overlap
	return 1 + (n-s.size+stride-1)/stride
}

// Split returns the chunks of content ordered by StartChar. Offsets are rune offsets.
// Empty content yields no chunks.
func (s *Splitter) Split(content, docID string) []models.Chunk {
	runes := []rune(content)
	n := len(runes)
	if n == 0 {
		return nil
	}

	stride := s.size - s.overlap
	chunks := make([]models.Chunk, 0, s.Count(n))

	for start := 0; ; start += stride {
		end := min(start+s.size, n)
		chunks = append(chunks, models.Chunk{
			Content:    string(runes[start:end]),
			DocID:      docID,
			ChunkIndex: len(chunks),
			StartChar:  start,
			EndChar:    end,
		})
		if end == n {
			break
		}
	}

	return chunks
}
