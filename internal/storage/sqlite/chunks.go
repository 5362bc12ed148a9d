// ABOUTME: Chunk collection persistence and similarity search
// ABOUTME: Documents are written in one transaction so a doc_id is either fully present or absent
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/harper/bookrag/internal/models"
)

// ChunkTable handles chunk persistence
type ChunkTable struct {
	db *DB
}

// NewChunkTable creates a new ChunkTable
func NewChunkTable(db *DB) *ChunkTable {
	return &ChunkTable{db: db}
}

// Insert writes chunks with their vectors. Missing IDs are generated.
func (t *ChunkTable) Insert(ctx context.Context, chunks []models.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, doc_id, chunk_index, start_char, end_char, content, source, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, c.DocID, c.ChunkIndex, c.StartChar, c.EndChar,
			c.Content, nullString(c.Source), vectorToBlob(vectors[i])); err != nil {
			return fmt.Errorf("insert chunk %d of %s: %w", c.ChunkIndex, c.DocID, err)
		}
	}

	return tx.Commit()
}

// Search performs cosine similarity search, optionally restricted to one doc_id
func (t *ChunkTable) Search(ctx context.Context, query []float64, k int, docID string) ([]models.ScoredChunk, error) {
	q := `SELECT id, doc_id, chunk_index, start_char, end_char, content, source, vector FROM chunks`
	var args []any
	if docID != "" {
		q += ` WHERE doc_id = ?`
		args = append(args, docID)
	}
	q += ` ORDER BY doc_id, chunk_index`

	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []models.ScoredChunk
	for rows.Next() {
		var (
			c      models.Chunk
			source sql.NullString
			blob   []byte
		)
		if err := rows.Scan(&c.ID, &c.DocID, &c.ChunkIndex, &c.StartChar, &c.EndChar, &c.Content, &source, &blob); err != nil {
			return nil, err
		}
		c.Source = source.String
		results = append(results, models.ScoredChunk{
			Chunk: c,
			Score: CosineSimilarity(query, blobToVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topK(results, func(s models.ScoredChunk) float64 { return s.Score }, k), nil
}

// HasDocument reports whether any chunk exists for docID
func (t *ChunkTable) HasDocument(ctx context.Context, docID string) (bool, error) {
	var one int
	err := t.db.QueryRowContext(ctx, `SELECT 1 FROM chunks WHERE doc_id = ? LIMIT 1`, docID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of chunks, optionally for one doc_id
func (t *ChunkTable) Count(ctx context.Context, docID string) (int, error) {
	q := `SELECT COUNT(*) FROM chunks`
	var args []any
	if docID != "" {
		q += ` WHERE doc_id = ?`
		args = append(args, docID)
	}
	var n int
	err := t.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// DocIDs returns the distinct indexed document ids, sorted
func (t *ChunkTable) DocIDs(ctx context.Context) ([]string, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT DISTINCT doc_id FROM chunks ORDER BY doc_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
