// ABOUTME: Stats is the snapshot returned by the engine's stats operation
package models

// Stats summarizes what a corpus currently holds
type Stats struct {
	TotalChunks    int      `json:"total_chunks"`
	TotalSummaries int      `json:"total_summaries"`
	GraphNodes     int      `json:"graph_nodes"`
	GraphEdges     int      `json:"graph_edges"`
	IndexedDocIDs  []string `json:"indexed_doc_ids"`
	EmbeddingModel string   `json:"embedding_model_name"`
}
