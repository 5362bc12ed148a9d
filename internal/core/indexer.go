// ABOUTME: Indexer ingests documents: chunks always, summaries and graph when the book is long enough
// ABOUTME: Re-ingesting a doc_id is a no-op and enrichment failures never undo written chunks
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/graph"
	"github.com/harper/bookrag/internal/loader"
	"github.com/harper/bookrag/internal/models"
	"github.com/harper/bookrag/internal/splitter"
	"github.com/harper/bookrag/internal/storage"
	"github.com/harper/bookrag/internal/util"
)

// IndexReport describes what one AddDocument call wrote
type IndexReport struct {
	DocID            string             `json:"doc_id"`
	Skipped          bool               `json:"skipped"`
	Chunks           int                `json:"chunks"`
	Sections         int                `json:"sections"`
	MasterSummary    bool               `json:"master_summary"`
	Entities         int                `json:"entities"`
	Relations        int                `json:"relations"`
	EnrichmentErrors []*EnrichmentError `json:"-"`
	Duration         time.Duration      `json:"duration"`
}

// Indexer drives ingestion into one Storage
type Indexer struct {
	store      *storage.Storage
	loader     *loader.Loader
	splitter   *splitter.Splitter
	summarizer *Summarizer
	extractor  *graph.Extractor
	threshold  int
	logger     *log.Logger
	docLocks   keyedMutex
}

// IndexerConfig wires the Indexer's collaborators
type IndexerConfig struct {
	Splitter         *splitter.Splitter
	Summarizer       *Summarizer
	Extractor        *graph.Extractor
	Loader           *loader.Loader
	SummaryThreshold int
}

// NewIndexer creates an Indexer over store
func NewIndexer(store *storage.Storage, cfg IndexerConfig, logger *log.Logger) *Indexer {
	if cfg.Splitter == nil {
		cfg.Splitter = splitter.Default()
	}
	if cfg.Loader == nil {
		cfg.Loader = loader.New(logger)
	}
	if cfg.Summarizer == nil {
		cfg.Summarizer = NewSummarizer(nil, SummarizerConfig{}, logger)
	}
	if cfg.Extractor == nil {
		cfg.Extractor = graph.NewExtractor(nil, nil, logger)
	}
	if cfg.SummaryThreshold <= 0 {
		cfg.SummaryThreshold = 5000
	}
	return &Indexer{
		store:      store,
		loader:     cfg.Loader,
		splitter:   cfg.Splitter,
		summarizer: cfg.Summarizer,
		extractor:  cfg.Extractor,
		threshold:  cfg.SummaryThreshold,
		logger:     logger,
	}
}

// AddDocument loads the file at path and indexes it as docID. An empty docID is
// derived from the file name.
func (ix *Indexer) AddDocument(ctx context.Context, path, docID string) (IndexReport, error) {
	if docID == "" {
		docID = loader.DocIDFromPath(path)
	}
	unlock := ix.docLocks.lock(docID)
	defer unlock()

	if report, done, err := ix.skipIfIndexed(ctx, docID); done || err != nil {
		return report, err
	}

	doc, err := ix.loader.Load(ctx, path, docID)
	if err != nil {
		return IndexReport{DocID: docID}, err
	}
	return ix.index(ctx, doc, filepath.Base(path))
}

// AddContent indexes already-decoded text
func (ix *Indexer) AddContent(ctx context.Context, content, source, docID string) (IndexReport, error) {
	if strings.TrimSpace(docID) == "" {
		return IndexReport{}, errors.New("doc_id is required")
	}
	unlock := ix.docLocks.lock(docID)
	defer unlock()

	if report, done, err := ix.skipIfIndexed(ctx, docID); done || err != nil {
		return report, err
	}

	if strings.TrimSpace(content) == "" {
		return IndexReport{DocID: docID}, fmt.Errorf("%w: %s", models.ErrEmptyDocument, docID)
	}
	doc := models.Document{
		Content:  content,
		Metadata: models.DocumentMetadata{DocID: docID, SourcePath: source},
	}
	return ix.index(ctx, doc, source)
}

func (ix *Indexer) skipIfIndexed(ctx context.Context, docID string) (IndexReport, bool, error) {
	present, err := ix.store.Chunks().Contains(ctx, docID)
	if err != nil {
		return IndexReport{DocID: docID}, false, fmt.Errorf("failed to check %q: %w", docID, err)
	}
	if present {
		ix.logger.Info().Str("doc_id", docID).Msg("document already indexed, skipping")
		return IndexReport{DocID: docID, Skipped: true}, true, nil
	}
	return IndexReport{}, false, nil
}

func (ix *Indexer) index(ctx context.Context, doc models.Document, source string) (IndexReport, error) {
	started := time.Now()
	docID := doc.Metadata.DocID
	report := IndexReport{DocID: docID}

	chunks := ix.splitter.Split(doc.Content, docID)
	for i := range chunks {
		chunks[i].Source = source
	}
	if err := ix.store.Chunks().Add(ctx, chunks); err != nil {
		return report, fmt.Errorf("failed to store chunks for %q: %w", docID, err)
	}
	report.Chunks = len(chunks)

	length := util.RuneLen(doc.Content)
	ix.logger.Info().
		Str("doc_id", docID).
		Int("chars", length).
		Int("chunks", report.Chunks).
		Msg("chunks indexed")

	if length > ix.threshold {
		ix.enrich(ctx, doc.Content, docID, source, &report)
	}

	report.Duration = time.Since(started)
	ix.logger.Info().
		Str("doc_id", docID).
		Int("chunks", report.Chunks).
		Int("sections", report.Sections).
		Bool("master_summary", report.MasterSummary).
		Int("entities", report.Entities).
		Int("relations", report.Relations).
		Int("skipped_enrichments", len(report.EnrichmentErrors)).
		Dur("duration", report.Duration).
		Msg("document indexed")
	return report, nil
}

// enrich writes section summaries, the master summary and graph entities.
// The chunks are already committed, so every failure here is recorded on the
// report as an EnrichmentError and ingestion still succeeds.
func (ix *Indexer) enrich(ctx context.Context, content, docID, source string, report *IndexReport) {
	if !ix.summarizer.Available() {
		ix.logger.Warn().Str("doc_id", docID).Msg("no LLM configured, skipping summaries and graph extraction")
		return
	}

	sections := ix.summarizer.Sections(content)
	var (
		summaries []models.Summary
		texts     []string
	)
	for i, section := range sections {
		text, err := ix.summarizer.SummarizeSection(ctx, docID, section, i, len(sections))
		if err != nil {
			ix.skip(report, StageSectionSummary, docID, i, err)
			continue
		}
		summaries = append(summaries, models.NewSectionSummary(docID, source, text, i))
		texts = append(texts, text)
		ix.logger.Debug().Str("doc_id", docID).Int("section_index", i).Int("total", len(sections)).Msg("section summarized")
	}

	if len(summaries) == 0 {
		return
	}
	if err := ix.store.Summaries().Add(ctx, summaries); err != nil {
		ix.skip(report, StageSectionSummary, docID, NoSection, fmt.Errorf("storing section summaries: %w", err))
	} else {
		report.Sections = len(summaries)
	}

	master, err := ix.summarizer.SummarizeBook(ctx, docID, texts)
	if err != nil {
		ix.skip(report, StageMasterSummary, docID, NoSection, err)
	} else {
		if err := ix.store.Summaries().Add(ctx, []models.Summary{models.NewMasterSummary(docID, source, master)}); err != nil {
			ix.skip(report, StageMasterSummary, docID, NoSection, fmt.Errorf("storing master summary: %w", err))
		} else {
			report.MasterSummary = true
		}
	}

	for _, sum := range summaries {
		extraction, err := ix.extractor.Extract(ctx, sum.Content)
		if err != nil {
			ix.skip(report, StageGraphExtraction, docID, *sum.SectionIndex, err)
			continue
		}
		added := graph.Apply(ix.store.Graph(), extraction)
		report.Entities += added.Nodes
		report.Relations += added.Edges
	}

	if err := ix.store.SaveGraph(); err != nil {
		ix.skip(report, StageGraphExtraction, docID, NoSection, fmt.Errorf("persisting graph: %w", err))
	}
}

func (ix *Indexer) skip(report *IndexReport, stage Stage, docID string, section int, err error) {
	e := &EnrichmentError{Stage: stage, DocID: docID, Section: section, Err: err}
	report.EnrichmentErrors = append(report.EnrichmentErrors, e)

	ev := ix.logger.Warn().Err(err).Str("stage", string(stage)).Str("doc_id", docID)
	if section != NoSection {
		ev = ev.Int("section_index", section)
	}
	ev.Msg("enrichment skipped")
}
