// ABOUTME: Knowledge graph records: entities and typed relationships
// ABOUTME: Node names are the merge key across all ingested documents
package models

// GraphNode is an entity extracted from a section summary
type GraphNode struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// GraphEdge is a relationship between two existing nodes
type GraphEdge struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Relation    string `json:"relation"`
	Description string `json:"description,omitempty"`
}
