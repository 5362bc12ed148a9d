// ABOUTME: Embedding-aware chunk and summary collections with reader/writer locking
// ABOUTME: Writers embed outside the lock and hold it only for the transactional insert
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/harper/bookrag/internal/embedding"
	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/storage/sqlite"
)

// ChunkFilter restricts chunk search; zero value matches everything
type ChunkFilter struct {
	DocID string
}

// SummaryFilter restricts summary search by doc_id and record type
type SummaryFilter struct {
	DocID string
	Type  models.SummaryType
}

// ChunkStore is the chunk collection
type ChunkStore struct {
	mu       sync.RWMutex
	table    *sqlite.ChunkTable
	embedder embedding.Provider
}

// Add embeds and stores chunks
func (s *ChunkStore) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := embedding.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Insert(ctx, chunks, vectors)
}

// SimilaritySearch returns up to k chunks ordered by descending similarity to query
func (s *ChunkStore) SimilaritySearch(ctx context.Context, query string, k int, filter ChunkFilter) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Search(ctx, vec, k, filter.DocID)
}

// Contains reports whether docID has been indexed
func (s *ChunkStore) Contains(ctx context.Context, docID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.HasDocument(ctx, docID)
}

// Count returns the total number of chunks
func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Count(ctx, "")
}

// CountFor returns the number of chunks of one document
func (s *ChunkStore) CountFor(ctx context.Context, docID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Count(ctx, docID)
}

// DocIDs returns the indexed document ids, sorted
func (s *ChunkStore) DocIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.DocIDs(ctx)
}

// SummaryStore is the summary collection holding chapter and book summaries
type SummaryStore struct {
	mu       sync.RWMutex
	table    *sqlite.SummaryTable
	embedder embedding.Provider
}

// Add embeds and stores summaries
func (s *SummaryStore) Add(ctx context.Context, summaries []models.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	texts := make([]string, len(summaries))
	for i, sum := range summaries {
		texts[i] = sum.Content
	}
	vectors, err := embedding.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return fmt.Errorf("failed to embed summaries: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Insert(ctx, summaries, vectors)
}

// SimilaritySearch returns up to k summaries matching filter, most similar first
func (s *SummaryStore) SimilaritySearch(ctx context.Context, query string, k int, filter SummaryFilter) ([]models.ScoredSummary, error) {
	if k <= 0 {
		return nil, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Search(ctx, vec, k, filter.DocID, filter.Type)
}

// Contains reports whether any summary exists for docID
func (s *SummaryStore) Contains(ctx context.Context, docID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.HasDocument(ctx, docID)
}

// Count returns the total number of summaries
func (s *SummaryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Count(ctx, "", "")
}

// CountFor returns the number of summaries of one type for one document
func (s *SummaryStore) CountFor(ctx context.Context, docID string, typ models.SummaryType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Count(ctx, docID, typ)
}
