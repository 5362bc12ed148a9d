// ABOUTME: Per-corpus storage: chunk and summary collections in SQLite plus the graph file
// ABOUTME: Each corpus lives in its own rag_db directory so corpora never mix
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/embedding"
	"github.com/harper/bookrag/internal/graph"
	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/storage/sqlite"
)

// File names inside a rag_db directory
const (
	DatabaseFile = "rag.db"
	GraphFile    = "graph.json"
)

// ErrNoStore means neither the corpus store nor the shared fallback exists
var ErrNoStore = errors.New("no rag_db found for corpus")

// Storage bundles the three persisted collections of one corpus
type Storage struct {
	dir       string
	db        *sqlite.DB
	chunks    *ChunkStore
	summaries *SummaryStore
	graph     *graph.Store
	graphMu   sync.Mutex
	embedder  embedding.Provider
	logger    *log.Logger
}

// Open opens (or creates) the store rooted at dir
func Open(ctx context.Context, dir string, embedder embedding.Provider, logger *log.Logger) (*Storage, error) {
	db, err := sqlite.Open(filepath.Join(dir, DatabaseFile))
	if err != nil {
		return nil, err
	}

	g, err := graph.Load(filepath.Join(dir, GraphFile))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := newStorage(dir, db, g, embedder, logger)
	if err := s.checkEmbedding(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory creates a throwaway store (for testing). SaveGraph is a no-op.
func OpenInMemory(embedder embedding.Provider, logger *log.Logger) (*Storage, error) {
	db, err := sqlite.OpenInMemory()
	if err != nil {
		return nil, err
	}
	s := newStorage("", db, graph.NewStore(), embedder, logger)
	if err := s.checkEmbedding(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newStorage(dir string, db *sqlite.DB, g *graph.Store, embedder embedding.Provider, logger *log.Logger) *Storage {
	return &Storage{
		dir:       dir,
		db:        db,
		chunks:    &ChunkStore{table: sqlite.NewChunkTable(db), embedder: embedder},
		summaries: &SummaryStore{table: sqlite.NewSummaryTable(db), embedder: embedder},
		graph:     g,
		embedder:  embedder,
		logger:    logger,
	}
}

// checkEmbedding records the embedding model on first use and warns when a
// later session embeds with a different dimension than the stored vectors.
func (s *Storage) checkEmbedding(ctx context.Context) error {
	meta := sqlite.NewMetaTable(s.db)

	stored, err := meta.Dimension(ctx)
	if err != nil {
		return fmt.Errorf("failed to read embedding metadata: %w", err)
	}
	if stored == 0 {
		if err := meta.Set(ctx, sqlite.MetaEmbeddingModel, s.embedder.Name()); err != nil {
			return err
		}
		return meta.Set(ctx, sqlite.MetaEmbeddingDimension, strconv.Itoa(s.embedder.Dimension()))
	}

	if stored != s.embedder.Dimension() {
		model, _ := meta.Get(ctx, sqlite.MetaEmbeddingModel)
		s.logger.Warn().
			Str("dir", s.dir).
			Str("stored_model", model).
			Int("stored_dimension", stored).
			Str("model", s.embedder.Name()).
			Int("dimension", s.embedder.Dimension()).
			Msg("embedding dimension differs from stored vectors, similarity will be zero")
	}
	return nil
}

// Dir returns the rag_db directory, empty for in-memory stores
func (s *Storage) Dir() string { return s.dir }

// Chunks returns the chunk collection
func (s *Storage) Chunks() *ChunkStore { return s.chunks }

// Summaries returns the summary collection
func (s *Storage) Summaries() *SummaryStore { return s.summaries }

// Graph returns the knowledge graph
func (s *Storage) Graph() *graph.Store { return s.graph }

// Embedder returns the provider used for both collections
func (s *Storage) Embedder() embedding.Provider { return s.embedder }

// SaveGraph writes the whole graph to graph.json
func (s *Storage) SaveGraph() error {
	if s.dir == "" {
		return nil
	}
	s.graphMu.Lock()
	defer s.graphMu.Unlock()
	return s.graph.Save(filepath.Join(s.dir, GraphFile))
}

// Stats summarizes the corpus
func (s *Storage) Stats(ctx context.Context) (models.Stats, error) {
	chunks, err := s.chunks.Count(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	summaries, err := s.summaries.Count(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	ids, err := s.chunks.DocIDs(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	if ids == nil {
		ids = []string{}
	}
	return models.Stats{
		TotalChunks:    chunks,
		TotalSummaries: summaries,
		GraphNodes:     s.graph.NodeCount(),
		GraphEdges:     s.graph.EdgeCount(),
		IndexedDocIDs:  ids,
		EmbeddingModel: s.embedder.Name(),
	}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// ResolveDir picks the rag_db directory to read from: the corpus store when it
// exists, otherwise the shared store when that exists.
func ResolveDir(cfg *config.Config, corpus string) (string, error) {
	dir := cfg.StorageDir(corpus)
	if exists(filepath.Join(dir, DatabaseFile)) {
		return dir, nil
	}
	shared := cfg.StorageDir(config.SharedCorpus)
	if exists(filepath.Join(shared, DatabaseFile)) {
		return shared, nil
	}
	return "", fmt.Errorf("%w %q (looked in %s and %s)", ErrNoStore, corpus, dir, shared)
}

// PeekDimension returns the embedding dimension stored in dir, or 0 when the
// store does not exist yet.
func PeekDimension(ctx context.Context, dir string) (int, error) {
	path := filepath.Join(dir, DatabaseFile)
	if !exists(path) {
		return 0, nil
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	return sqlite.NewMetaTable(db).Dimension(ctx)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
