// ABOUTME: Engine is the entry point tying ingestion, classification, retrieval and synthesis together
// ABOUTME: Collaborators are injected; a nil LLM client puts every LLM step in degraded mode
package core

import (
	"context"
	"errors"
	"strings"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/graph"
	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/loader"
	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/splitter"
	"github.com/harper/bookrag/internal/storage"
)

// Engine answers questions about the books in one Storage
type Engine struct {
	store       *storage.Storage
	client      llm.Client
	indexer     *Indexer
	classifier  *Classifier
	dispatcher  *Dispatcher
	synthesizer *Synthesizer
	logger      *log.Logger
}

// NewEngine wires an Engine from configuration. client may be nil.
func NewEngine(store *storage.Storage, client llm.Client, cfg *config.Config, logger *log.Logger) (*Engine, error) {
	split, err := splitter.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	summarizer := NewSummarizer(client, SummarizerConfig{
		SectionSize:  cfg.SectionSize,
		MaxSections:  cfg.MaxSections,
		MasterBudget: cfg.MasterBudget,
	}, logger)

	indexer := NewIndexer(store, IndexerConfig{
		Splitter:         split,
		Summarizer:       summarizer,
		Extractor:        graph.NewExtractor(client, llm.LenientParser{}, logger),
		Loader:           loader.New(logger),
		SummaryThreshold: cfg.SummaryThreshold,
	}, logger)

	return &Engine{
		store:       store,
		client:      client,
		indexer:     indexer,
		classifier:  NewClassifier(client, llm.LenientParser{Flat: true}, cfg.ClassifierThreshold, logger),
		dispatcher:  NewDispatcher(store, logger),
		synthesizer: NewSynthesizer(client, cfg.ContextBudget, logger),
		logger:      logger,
	}, nil
}

// Storage returns the underlying store
func (e *Engine) Storage() *storage.Storage { return e.store }

// ModelName names the LLM in use, "none" without one
func (e *Engine) ModelName() string { return llm.ModelName(e.client) }

// AddDocument ingests the file at path. Safe to call concurrently for different doc_ids;
// calls for the same doc_id are serialized and all but the first are skipped.
func (e *Engine) AddDocument(ctx context.Context, path, docID string) (IndexReport, error) {
	return e.indexer.AddDocument(ctx, path, docID)
}

// AddContent ingests already-decoded text
func (e *Engine) AddContent(ctx context.Context, content, source, docID string) (IndexReport, error) {
	return e.indexer.AddContent(ctx, content, source, docID)
}

// QueryOptions selects what to retrieve. Empty Type or AUTO runs the classifier;
// K <= 0 uses the default for the resolved type.
type QueryOptions struct {
	Query string
	DocID string
	K     int
	Type  models.QueryType
}

// QueryResponse is the outcome of retrieval
type QueryResponse struct {
	Query      string                   `json:"query"`
	Type       models.QueryType         `json:"query_type"`
	Confidence float64                  `json:"confidence"`
	Classified bool                     `json:"classified"`
	K          int                      `json:"k"`
	Results    []models.RetrievalResult `json:"results"`
}

// Query classifies (when needed) and retrieves. No match yields an empty result list.
func (e *Engine) Query(ctx context.Context, opts QueryOptions) (QueryResponse, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return QueryResponse{}, errors.New("query is empty")
	}

	resp := QueryResponse{Query: query, Type: opts.Type, Confidence: 1.0}
	if resp.Type == "" || resp.Type == models.QueryAuto {
		resp.Type, resp.Confidence = e.classifier.Classify(ctx, query)
		resp.Classified = true
		e.logger.Info().Str("type", string(resp.Type)).Float64("confidence", resp.Confidence).Msg("query classified")
	}
	if !resp.Type.IsValid() {
		e.logger.Warn().Str("type", string(resp.Type)).Msg("unknown query type, using SPECIFIC")
		resp.Type = models.QuerySpecific
	}

	resp.K = opts.K
	if resp.K <= 0 {
		resp.K = resp.Type.DefaultK()
	}

	results, err := e.dispatcher.Retrieve(ctx, Request{Query: query, DocID: opts.DocID, K: resp.K, Type: resp.Type})
	if err != nil {
		return resp, err
	}
	resp.Results = results
	return resp, nil
}

// AskOptions extends QueryOptions with synthesis settings
type AskOptions struct {
	QueryOptions
	Prompt string
	// ContextOnly skips the model call and returns the formatted context
	ContextOnly bool
}

// Answer is the outcome of Ask
type Answer struct {
	QueryResponse
	Context     string `json:"context"`
	Text        string `json:"answer"`
	Synthesized bool   `json:"synthesized"`
}

// Ask retrieves and then synthesizes an answer. If synthesis is unavailable or fails,
// the formatted context is returned as the answer.
func (e *Engine) Ask(ctx context.Context, opts AskOptions) (Answer, error) {
	resp, err := e.Query(ctx, opts.QueryOptions)
	if err != nil {
		return Answer{QueryResponse: resp}, err
	}

	ans := Answer{QueryResponse: resp}
	if len(resp.Results) == 0 {
		ans.Text = NoResultsMessage(resp.Query)
		return ans, nil
	}

	ans.Context = e.synthesizer.BuildContext(resp.Results, resp.Type)
	if opts.ContextOnly || e.client == nil {
		ans.Text = ans.Context
		return ans, nil
	}

	text, err := e.synthesizer.Synthesize(ctx, resp.Query, resp.Results, resp.Type, opts.Prompt)
	if err != nil {
		e.logger.Warn().Err(err).Msg("answer synthesis failed, returning context")
		ans.Text = ans.Context
		return ans, nil
	}
	ans.Text = text
	ans.Synthesized = true
	return ans, nil
}

// Stats reports what the corpus holds
func (e *Engine) Stats(ctx context.Context) (models.Stats, error) {
	return e.store.Stats(ctx)
}
