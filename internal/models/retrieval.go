// ABOUTME: RetrievalResult is the unit returned by every retrieval strategy
// ABOUTME: Metadata records which store the content came from and its origin
package models

// SourceType labels where a retrieval result came from
type SourceType string

const (
	SourceChunk          SourceType = "chunk"
	SourceChapterSummary SourceType = "chapter_summary"
	SourceBookSummary    SourceType = "book_summary"
	SourceGraph          SourceType = "graph"
)

// ResultMetadata describes the origin of a retrieval result
type ResultMetadata struct {
	Type         SourceType `json:"type"`
	DocID        string     `json:"doc_id,omitempty"`
	SectionIndex *int       `json:"section_index,omitempty"`
	ChunkIndex   *int       `json:"chunk_index,omitempty"`
	Source       string     `json:"source,omitempty"`
	Score        float64    `json:"score,omitempty"`
}

// RetrievalResult is one block of context handed to the synthesizer
type RetrievalResult struct {
	Content  string         `json:"content"`
	Metadata ResultMetadata `json:"metadata"`
}

// ChunkResult converts a search hit from the chunk store
func ChunkResult(c ScoredChunk) RetrievalResult {
	idx := c.ChunkIndex
	return RetrievalResult{
		Content: c.Content,
		Metadata: ResultMetadata{
			Type:       SourceChunk,
			DocID:      c.DocID,
			ChunkIndex: &idx,
			Source:     c.Source,
			Score:      c.Score,
		},
	}
}

// SummaryResult converts a search hit from the summary store
func SummaryResult(s ScoredSummary) RetrievalResult {
	var idx *int
	if s.SectionIndex != nil {
		v := *s.SectionIndex
		idx = &v
	}
	return RetrievalResult{
		Content: s.Content,
		Metadata: ResultMetadata{
			Type:         SourceType(s.Type),
			DocID:        s.DocID,
			SectionIndex: idx,
			Source:       s.Source,
			Score:        s.Score,
		},
	}
}

// GraphResult wraps a context record assembled from the knowledge graph
func GraphResult(content, nodeName string) RetrievalResult {
	return RetrievalResult{
		Content: content,
		Metadata: ResultMetadata{
			Type:   SourceGraph,
			Source: nodeName,
		},
	}
}
