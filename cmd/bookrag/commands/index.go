// ABOUTME: CLI command to index books into a corpus
// ABOUTME: Chunks, embeds, summarizes and graphs each file; re-indexing a doc_id is a no-op
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/bookrag/internal/core"
	"github.com/harper/bookrag/internal/loader"
)

var (
	indexDocID string
)

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <file>...",
		Short: "Index one or more books",
		Long: `Index books into the corpus store.

Each file is split into overlapping chunks and embedded. Books longer than the
summary threshold also get section summaries, a master summary and knowledge
graph entities when an LLM is available. The doc_id defaults to the file name
without extension, with underscores replaced by spaces.

Examples:
  bookrag index Moby_Dick.epub
  bookrag index --doc "Moby Dick" mobydick.pdf
  bookrag --corpus whalers index books/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIndex,
	}

	cmd.Flags().StringVar(&indexDocID, "doc", "", "doc_id to use (only with a single file)")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexDocID != "" && len(args) > 1 {
		return fmt.Errorf("--doc can only be used with a single file")
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, false, llmOverrides{})
	if err != nil {
		return err
	}
	defer s.Close()

	var failed int
	for _, path := range args {
		docID := indexDocID
		if docID == "" {
			docID = loader.DocIDFromPath(path)
		}

		report, err := s.engine.AddDocument(ctx, path, docID)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "[FAIL] %s: %v\n", path, err)
			continue
		}
		if !quiet {
			printReport(cmd.OutOrStdout(), report)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to index", failed, len(args))
	}
	return nil
}

// printReport writes a one-line summary of an ingestion
func printReport(w io.Writer, r core.IndexReport) {
	if r.Skipped {
		fmt.Fprintf(w, "[OK] %s (already indexed)\n", r.DocID)
		return
	}
	fmt.Fprintf(w, "[OK] %s: %d chunks, %d section summaries, %d entities, %d relations",
		r.DocID, r.Chunks, r.Sections, r.Entities, r.Relations)
	if n := len(r.EnrichmentErrors); n > 0 {
		fmt.Fprintf(w, " (%d enrichment warning(s))", n)
	}
	fmt.Fprintln(w)
}
