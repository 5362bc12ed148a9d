// ABOUTME: Retrieval dispatcher running the strategy selected by the query type
// ABOUTME: SPECIFIC, BROAD, GRAPH and MIXED each combine the chunk, summary and graph stores differently
package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/storage"
)

// Strategy sizes
const (
	maxOversample     = 50
	broadPool         = 50
	broadSample       = 15
	graphMaxMatches   = 5
	graphMaxRelations = 5
	mixedChapters     = 3
	mixedChunks       = 10
	mixedLimit        = 15
)

// Request is one retrieval call
type Request struct {
	Query string
	DocID string
	K     int
	Type  models.QueryType
}

// Dispatcher routes a Request to its retrieval strategy
type Dispatcher struct {
	store  *storage.Storage
	logger *log.Logger
}

// NewDispatcher creates a Dispatcher over store
func NewDispatcher(store *storage.Storage, logger *log.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger}
}

// Retrieve runs the strategy for req.Type. Unknown types use SPECIFIC.
// An empty result is not an error.
func (d *Dispatcher) Retrieve(ctx context.Context, req Request) ([]models.RetrievalResult, error) {
	if req.K <= 0 {
		req.K = req.Type.DefaultK()
	}

	var (
		results []models.RetrievalResult
		err     error
	)
	switch req.Type {
	case models.QueryBroad:
		results, err = d.broad(ctx, req)
	case models.QueryGraph:
		results = d.graphContext(req.Query)
	case models.QueryMixed:
		results, err = d.mixed(ctx, req)
	default:
		results, err = d.specific(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("type", string(req.Type)).
		Str("doc_id", req.DocID).
		Int("k", req.K).
		Int("results", len(results)).
		Msg("retrieval complete")
	if results == nil {
		results = []models.RetrievalResult{}
	}
	return results, nil
}

func (d *Dispatcher) specific(ctx context.Context, req Request) ([]models.RetrievalResult, error) {
	chunks, err := d.store.Chunks().SimilaritySearch(ctx, req.Query, min(3*req.K, maxOversample),
		storage.ChunkFilter{DocID: req.DocID})
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	return Dedupe(chunkResults(chunks), req.K), nil
}

func (d *Dispatcher) broad(ctx context.Context, req Request) ([]models.RetrievalResult, error) {
	masters, err := d.store.Summaries().SimilaritySearch(ctx, req.Query, 1,
		storage.SummaryFilter{DocID: req.DocID, Type: models.SummaryTypeBook})
	if err != nil {
		return nil, fmt.Errorf("book summary search failed: %w", err)
	}

	pool, err := d.store.Chunks().SimilaritySearch(ctx, req.Query, broadPool, storage.ChunkFilter{DocID: req.DocID})
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}

	results := summaryResults(masters)
	return append(results, chunkResults(DiversifiedSample(pool, broadSample))...), nil
}

func (d *Dispatcher) mixed(ctx context.Context, req Request) ([]models.RetrievalResult, error) {
	results := d.graphContext(req.Query)

	masters, err := d.store.Summaries().SimilaritySearch(ctx, req.Query, 1,
		storage.SummaryFilter{DocID: req.DocID, Type: models.SummaryTypeBook})
	if err != nil {
		return nil, fmt.Errorf("book summary search failed: %w", err)
	}
	results = append(results, summaryResults(masters)...)

	chapters, err := d.store.Summaries().SimilaritySearch(ctx, req.Query, mixedChapters,
		storage.SummaryFilter{DocID: req.DocID, Type: models.SummaryTypeChapter})
	if err != nil {
		return nil, fmt.Errorf("chapter summary search failed: %w", err)
	}
	results = append(results, summaryResults(chapters)...)

	chunks, err := d.store.Chunks().SimilaritySearch(ctx, req.Query, mixedChunks, storage.ChunkFilter{DocID: req.DocID})
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	results = append(results, chunkResults(chunks)...)

	return Dedupe(results, mixedLimit), nil
}

// graphContext describes graph nodes whose names contain a capitalized term of query
func (d *Dispatcher) graphContext(query string) []models.RetrievalResult {
	g := d.store.Graph()
	if g.NodeCount() == 0 {
		return nil
	}

	var (
		matched []string
		seen    = make(map[string]struct{})
	)
	for _, cand := range CandidateEntities(query) {
		for _, name := range g.FindNodes(cand, 0) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			matched = append(matched, name)
			if len(matched) == graphMaxMatches {
				break
			}
		}
		if len(matched) == graphMaxMatches {
			break
		}
	}

	results := make([]models.RetrievalResult, 0, len(matched))
	for _, name := range matched {
		node, ok := g.Node(name)
		if !ok {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Entity: %s", node.Name)
		if node.Type != "" {
			fmt.Fprintf(&b, " (%s)", node.Type)
		}
		if node.Description != "" {
			fmt.Fprintf(&b, "\nDescription: %s", node.Description)
		}
		if rels := g.Relations(name, graphMaxRelations); len(rels) > 0 {
			b.WriteString("\nRelations:")
			for _, r := range rels {
				fmt.Fprintf(&b, "\n- %s %s %s", r.Source, r.Relation, r.Target)
				if r.Description != "" {
					fmt.Fprintf(&b, ": %s", r.Description)
				}
			}
		}
		results = append(results, models.GraphResult(b.String(), node.Name))
	}
	return results
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'’.-]*`)

// questionWords are capitalized only because they start a sentence
var questionWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "can": {}, "describe": {}, "did": {}, "do": {},
	"does": {}, "explain": {}, "how": {}, "i": {}, "in": {}, "is": {}, "list": {}, "of": {},
	"summarize": {}, "tell": {}, "the": {}, "was": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "who": {}, "whom": {}, "whose": {}, "why": {},
}

// CandidateEntities extracts likely entity names from query: runs of capitalized
// words as phrases, then each capitalized word on its own, without duplicates.
func CandidateEntities(query string) []string {
	var (
		out    []string
		seen   = make(map[string]struct{})
		phrase []string
	)
	add := func(s string) {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok || s == "" {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	var singles []string
	endPhrase := func() {
		if len(phrase) > 1 {
			add(strings.Join(phrase, " "))
		}
		phrase = phrase[:0]
	}

	for _, raw := range wordPattern.FindAllString(query, -1) {
		sentenceEnd := strings.HasSuffix(raw, ".")
		w := strings.TrimRight(raw, ".’'-")
		w = strings.TrimSuffix(strings.TrimSuffix(w, "'s"), "’s")
		r, _ := utf8.DecodeRuneInString(w)
		_, stop := questionWords[strings.ToLower(w)]
		if !unicode.IsUpper(r) || stop {
			endPhrase()
			continue
		}
		phrase = append(phrase, w)
		singles = append(singles, w)
		if sentenceEnd {
			endPhrase()
		}
	}
	endPhrase()

	for _, s := range singles {
		add(s)
	}
	return out
}

func chunkResults(chunks []models.ScoredChunk) []models.RetrievalResult {
	out := make([]models.RetrievalResult, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, models.ChunkResult(c))
	}
	return out
}

func summaryResults(summaries []models.ScoredSummary) []models.RetrievalResult {
	out := make([]models.RetrievalResult, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, models.SummaryResult(s))
	}
	return out
}
