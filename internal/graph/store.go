// ABOUTME: In-memory knowledge graph of named entities and typed relations
// ABOUTME: Persisted as a single JSON document after each ingested book
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harper/bookrag/internal/models"
)

// Store holds nodes keyed by name and edges between existing nodes.
// Nodes are first-write-wins: a later AddNode with the same name is ignored.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]models.GraphNode
	order []string
	edges []models.GraphEdge
	seen  map[edgeKey]struct{}
	adj   map[string][]int
}

type edgeKey struct {
	source, target, relation string
}

// NewStore creates an empty graph
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]models.GraphNode),
		seen:  make(map[edgeKey]struct{}),
		adj:   make(map[string][]int),
	}
}

func normalize(name string) string {
	return strings.TrimSpace(name)
}

// HasNode reports whether a node with the exact (trimmed) name exists
func (s *Store) HasNode(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[normalize(name)]
	return ok
}

// AddNode inserts node unless a node with the same name already exists.
// Returns true when the node was added.
func (s *Store) AddNode(node models.GraphNode) bool {
	node.Name = normalize(node.Name)
	if node.Name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[node.Name]; ok {
		return false
	}
	s.nodes[node.Name] = node
	s.order = append(s.order, node.Name)
	return true
}

// AddEdge inserts edge when both endpoints exist and the same
// (source, target, relation) triple has not been added yet.
func (s *Store) AddEdge(edge models.GraphEdge) bool {
	edge.Source = normalize(edge.Source)
	edge.Target = normalize(edge.Target)
	edge.Relation = strings.TrimSpace(edge.Relation)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[edge.Source]; !ok {
		return false
	}
	if _, ok := s.nodes[edge.Target]; !ok {
		return false
	}
	key := edgeKey{edge.Source, edge.Target, edge.Relation}
	if _, dup := s.seen[key]; dup {
		return false
	}

	s.seen[key] = struct{}{}
	s.edges = append(s.edges, edge)
	idx := len(s.edges) - 1
	s.adj[edge.Source] = append(s.adj[edge.Source], idx)
	if edge.Target != edge.Source {
		s.adj[edge.Target] = append(s.adj[edge.Target], idx)
	}
	return true
}

// Node returns the node with the given name
func (s *Store) Node(name string) (models.GraphNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[normalize(name)]
	return n, ok
}

// Nodes returns all nodes in insertion order
func (s *Store) Nodes() []models.GraphNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GraphNode, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.nodes[name])
	}
	return out
}

// Neighbors returns the distinct names connected to name in either direction,
// in the order the connecting edges were added.
func (s *Store) Neighbors(name string) []string {
	name = normalize(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	seen := make(map[string]struct{})
	for _, idx := range s.adj[name] {
		e := s.edges[idx]
		other := e.Target
		if other == name {
			other = e.Source
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	return out
}

// Relations returns up to limit edges touching name. A limit <= 0 returns all.
func (s *Store) Relations(name string, limit int) []models.GraphEdge {
	name = normalize(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.adj[name]
	if limit > 0 && len(idxs) > limit {
		idxs = idxs[:limit]
	}
	out := make([]models.GraphEdge, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, s.edges[idx])
	}
	return out
}

// FindNodes returns node names containing substr, case-insensitively, in insertion order.
// At most limit names are returned when limit > 0.
func (s *Store) FindNodes(substr string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(substr))
	if needle == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, name := range s.order {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, name)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// NodeCount returns the number of nodes
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

type graphFile struct {
	Version int                `json:"version"`
	Nodes   []models.GraphNode `json:"nodes"`
	Edges   []models.GraphEdge `json:"edges"`
}

const fileVersion = 1

// Save writes the whole graph to path, replacing any previous file atomically
func (s *Store) Save(path string) error {
	s.mu.RLock()
	doc := graphFile{Version: fileVersion, Edges: append([]models.GraphEdge(nil), s.edges...)}
	for _, name := range s.order {
		doc.Nodes = append(doc.Nodes, s.nodes[name])
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create graph directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".graph-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write graph: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close graph file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace graph file: %w", err)
	}
	return nil
}

// Load reads a graph from path. A missing file yields an empty graph.
// Edges whose endpoints are absent from the file are dropped.
func Load(path string) (*Store, error) {
	s := NewStore()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}

	var doc graphFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph %s: %w", path, err)
	}

	for _, n := range doc.Nodes {
		s.AddNode(n)
	}
	for _, e := range doc.Edges {
		s.AddEdge(e)
	}
	return s, nil
}
