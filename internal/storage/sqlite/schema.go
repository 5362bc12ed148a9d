// ABOUTME: SQLite database schema for the chunk and summary collections
// ABOUTME: Vectors are little-endian float64 BLOBs next to the record they embed
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Chunk collection: overlapping windows of each document
CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    doc_id TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    start_char INTEGER NOT NULL,
    end_char INTEGER NOT NULL,
    content TEXT NOT NULL,
    source TEXT,
    vector BLOB NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (doc_id, chunk_index)
);

-- Summary collection: chapter_summary and book_summary records
CREATE TABLE IF NOT EXISTS summaries (
    id TEXT PRIMARY KEY,
    doc_id TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('chapter_summary', 'book_summary')),
    section_index INTEGER,
    content TEXT NOT NULL,
    source TEXT,
    vector BLOB NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Collection-wide settings such as the embedding model and dimension
CREATE TABLE IF NOT EXISTS collection_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);
CREATE INDEX IF NOT EXISTS idx_summaries_doc_type ON summaries(doc_id, type);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
