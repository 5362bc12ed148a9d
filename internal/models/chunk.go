// ABOUTME: Document and Chunk records produced by ingestion
// ABOUTME: Chunks are overlapping windows over a document with rune offsets
package models

// Document is the decoded content of one ingested file
type Document struct {
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// DocumentMetadata identifies where a document came from
type DocumentMetadata struct {
	DocID      string `json:"doc_id"`
	SourcePath string `json:"source_path"`
}

// Chunk is a bounded, overlapping slice of a document's text.
// StartChar and EndChar are rune offsets into the source content, EndChar exclusive.
type Chunk struct {
	ID         string `json:"id,omitempty"`
	Content    string `json:"content"`
	DocID      string `json:"doc_id"`
	ChunkIndex int    `json:"chunk_index"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
	Source     string `json:"source,omitempty"`
}

// Len returns the number of runes the chunk covers
func (c Chunk) Len() int {
	return c.EndChar - c.StartChar
}

// ScoredChunk is a chunk returned from similarity search
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}
