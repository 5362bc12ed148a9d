// ABOUTME: Section and master summaries generated by the LLM during ingestion
// ABOUTME: Long books are cut into at most MaxSections slices so every part is covered
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/util"
)

const sectionPrompt = `You are summarizing part %d of %d of the book %q.
Write a detailed summary of this part. Name the characters, places and organizations that appear, describe what happens to them in order, and note any important relationships between them.

Text:
%s

Summary:`

const masterPrompt = `Below are summaries of consecutive parts of the book %q.
Write a single comprehensive summary of the whole book: its plot from beginning to end, its main characters and how they change, its setting, and its central themes.

Part summaries:
%s

Book summary:`

// SummarizerConfig sizes the summarization passes
type SummarizerConfig struct {
	SectionSize  int
	MaxSections  int
	MasterBudget int
}

// Summarizer produces chapter and book summaries
type Summarizer struct {
	client llm.Client
	cfg    SummarizerConfig
	logger *log.Logger
}

// NewSummarizer creates a Summarizer. client may be nil, in which case every call fails
// with models.ErrLLMUnavailable.
func NewSummarizer(client llm.Client, cfg SummarizerConfig, logger *log.Logger) *Summarizer {
	if cfg.SectionSize <= 0 {
		cfg.SectionSize = 50000
	}
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = 20
	}
	if cfg.MasterBudget <= 0 {
		cfg.MasterBudget = 20000
	}
	return &Summarizer{client: client, cfg: cfg, logger: logger}
}

// Available reports whether a model is configured
func (s *Summarizer) Available() bool {
	return s.client != nil
}

// Sections cuts content into consecutive slices of about SectionSize runes.
// When that would exceed MaxSections, the slice size grows so exactly MaxSections cover it.
func (s *Summarizer) Sections(content string) []string {
	runes := []rune(content)
	n := len(runes)
	if n == 0 {
		return nil
	}

	size := s.cfg.SectionSize
	if (n+size-1)/size > s.cfg.MaxSections {
		size = (n + s.cfg.MaxSections - 1) / s.cfg.MaxSections
	}

	var out []string
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		out = append(out, string(runes[start:end]))
	}
	return out
}

// SummarizeSection summarizes one slice. idx is zero-based.
func (s *Summarizer) SummarizeSection(ctx context.Context, docID, section string, idx, total int) (string, error) {
	prompt := fmt.Sprintf(sectionPrompt, idx+1, total, docID, section)
	return s.complete(ctx, prompt)
}

// SummarizeBook builds the master summary from the section summaries, which are
// joined and cut to MasterBudget runes first.
func (s *Summarizer) SummarizeBook(ctx context.Context, docID string, sectionSummaries []string) (string, error) {
	parts := make([]string, len(sectionSummaries))
	for i, sum := range sectionSummaries {
		parts[i] = fmt.Sprintf("Part %d:\n%s", i+1, sum)
	}
	joined := util.TruncateRunes(strings.Join(parts, "\n\n"), s.cfg.MasterBudget)
	return s.complete(ctx, fmt.Sprintf(masterPrompt, docID, joined))
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	if s.client == nil {
		return "", errNoLLM
	}
	resp, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return "", errEmptyResponse
	}
	return resp, nil
}
