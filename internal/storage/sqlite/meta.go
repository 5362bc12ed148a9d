// ABOUTME: Key/value settings stored alongside the collections
package sqlite

import (
	"context"
	"database/sql"
	"strconv"
)

// Meta keys
const (
	MetaEmbeddingModel     = "embedding_model"
	MetaEmbeddingDimension = "embedding_dimension"
)

// MetaTable handles collection_meta rows
type MetaTable struct {
	db *DB
}

// NewMetaTable creates a new MetaTable
func NewMetaTable(db *DB) *MetaTable {
	return &MetaTable{db: db}
}

// Set upserts a value
func (t *MetaTable) Set(ctx context.Context, key, value string) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO collection_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Get returns the value for key, or "" when unset
func (t *MetaTable) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := t.db.QueryRowContext(ctx, `SELECT value FROM collection_meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// Dimension returns the stored embedding dimension, or 0
func (t *MetaTable) Dimension(ctx context.Context) (int, error) {
	v, err := t.Get(ctx, MetaEmbeddingDimension)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.Atoi(v)
}
