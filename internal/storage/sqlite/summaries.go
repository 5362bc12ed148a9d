// ABOUTME: Summary collection persistence and similarity search
// ABOUTME: Holds chapter_summary and book_summary records filtered by doc_id and type
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harper/bookrag/internal/models"
)

// SummaryTable handles summary persistence
type SummaryTable struct {
	db *DB
}

// NewSummaryTable creates a new SummaryTable
func NewSummaryTable(db *DB) *SummaryTable {
	return &SummaryTable{db: db}
}

// Insert writes summaries with their vectors
func (t *SummaryTable) Insert(ctx context.Context, summaries []models.Summary, vectors [][]float64) error {
	if len(summaries) != len(vectors) {
		return fmt.Errorf("got %d summaries but %d vectors", len(summaries), len(vectors))
	}
	if len(summaries) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, s := range summaries {
		if !s.Type.IsValid() {
			return fmt.Errorf("invalid summary type %q", s.Type)
		}
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		var section sql.NullInt64
		if s.SectionIndex != nil {
			section = sql.NullInt64{Int64: int64(*s.SectionIndex), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO summaries (id, doc_id, type, section_index, content, source, vector)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, s.DocID, string(s.Type), section, s.Content, nullString(s.Source), vectorToBlob(vectors[i])); err != nil {
			return fmt.Errorf("insert %s for %s: %w", s.Type, s.DocID, err)
		}
	}

	return tx.Commit()
}

// Search performs cosine similarity search with optional doc_id and type equality filters
func (t *SummaryTable) Search(ctx context.Context, query []float64, k int, docID string, typ models.SummaryType) ([]models.ScoredSummary, error) {
	q := `SELECT id, doc_id, type, section_index, content, source, vector FROM summaries`
	var (
		where []string
		args  []any
	)
	if docID != "" {
		where = append(where, "doc_id = ?")
		args = append(args, docID)
	}
	if typ != "" {
		where = append(where, "type = ?")
		args = append(args, string(typ))
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += ` ORDER BY doc_id, type, section_index`

	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []models.ScoredSummary
	for rows.Next() {
		var (
			s       models.Summary
			typeStr string
			section sql.NullInt64
			source  sql.NullString
			blob    []byte
		)
		if err := rows.Scan(&s.ID, &s.DocID, &typeStr, &section, &s.Content, &source, &blob); err != nil {
			return nil, err
		}
		s.Type = models.SummaryType(typeStr)
		s.Source = source.String
		if section.Valid {
			idx := int(section.Int64)
			s.SectionIndex = &idx
		}
		results = append(results, models.ScoredSummary{
			Summary: s,
			Score:   CosineSimilarity(query, blobToVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topK(results, func(s models.ScoredSummary) float64 { return s.Score }, k), nil
}

// HasDocument reports whether any summary exists for docID
func (t *SummaryTable) HasDocument(ctx context.Context, docID string) (bool, error) {
	var one int
	err := t.db.QueryRowContext(ctx, `SELECT 1 FROM summaries WHERE doc_id = ? LIMIT 1`, docID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of summaries matching the optional filters
func (t *SummaryTable) Count(ctx context.Context, docID string, typ models.SummaryType) (int, error) {
	q := `SELECT COUNT(*) FROM summaries WHERE (? = '' OR doc_id = ?) AND (? = '' OR type = ?)`
	var n int
	err := t.db.QueryRowContext(ctx, q, docID, docID, string(typ), string(typ)).Scan(&n)
	return n, err
}
