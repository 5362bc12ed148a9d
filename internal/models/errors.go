// ABOUTME: Sentinel errors shared across packages
// ABOUTME: Callers match them with errors.Is
package models

import "errors"

var (
	// ErrLLMUnavailable means no completion provider is configured
	ErrLLMUnavailable = errors.New("llm provider unavailable")
	// ErrEmbeddingUnavailable means the preferred embedding model could not be reached
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrUnreadableDocument   = errors.New("unreadable document")
	ErrEmptyDocument        = errors.New("document has no text content")
)
