// ABOUTME: Summary records for section-level and document-level summaries
// ABOUTME: Both kinds share one collection and are told apart by Type
package models

// SummaryType distinguishes the two kinds of summary record
type SummaryType string

const (
	SummaryTypeChapter SummaryType = "chapter_summary"
	SummaryTypeBook    SummaryType = "book_summary"
)

// IsValid checks if the summary type is one of the known kinds
func (t SummaryType) IsValid() bool {
	switch t {
	case SummaryTypeChapter, SummaryTypeBook:
		return true
	default:
		return false
	}
}

// Summary is either a section summary (SectionIndex set) or the master summary of a document
type Summary struct {
	ID           string      `json:"id,omitempty"`
	Content      string      `json:"content"`
	DocID        string      `json:"doc_id"`
	Type         SummaryType `json:"type"`
	SectionIndex *int        `json:"section_index,omitempty"`
	Source       string      `json:"source,omitempty"`
}

// NewSectionSummary builds a chapter_summary record for the given slice index
func NewSectionSummary(docID, source, content string, sectionIndex int) Summary {
	idx := sectionIndex
	return Summary{
		Content:      content,
		DocID:        docID,
		Type:         SummaryTypeChapter,
		SectionIndex: &idx,
		Source:       source,
	}
}

// NewMasterSummary builds the book_summary record for a document
func NewMasterSummary(docID, source, content string) Summary {
	return Summary{
		Content: content,
		DocID:   docID,
		Type:    SummaryTypeBook,
		Source:  source,
	}
}

// ScoredSummary is a summary returned from similarity search
type ScoredSummary struct {
	Summary
	Score float64 `json:"score"`
}
