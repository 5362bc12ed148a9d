// ABOUTME: CLI command to index every book in a corpus input directory
// ABOUTME: Independent doc_ids run in parallel, bounded by --jobs
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harper/bookrag/internal/loader"
)

var (
	reindexJobs int
)

// reindexExtensions are the files picked up from the input directory
var reindexExtensions = map[string]bool{
	".pdf":  true,
	".epub": true,
	".txt":  true,
	".md":   true,
	".html": true,
}

// NewReindexCmd creates the reindex command
func NewReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Index every book in the corpus input directory",
		Long: `Index every .pdf, .epub, .txt, .md and .html file found in
<data-dir>/<corpus>/input. Books already indexed are skipped.

Examples:
  bookrag reindex
  bookrag --corpus whalers reindex --jobs 4`,
		Args: cobra.NoArgs,
		RunE: runReindex,
	}

	cmd.Flags().IntVar(&reindexJobs, "jobs", 2, "Books to index in parallel")

	return cmd
}

// inputFile pairs a path with the doc_id derived from it
type inputFile struct {
	path  string
	docID string
}

// scanInput lists indexable files in dir, one per doc_id, sorted by path
func scanInput(dir string) ([]inputFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	seen := make(map[string]bool)
	var files []inputFile
	for _, e := range entries {
		if e.IsDir() || !reindexExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		docID := loader.DocIDFromPath(e.Name())
		if docID == "" || seen[docID] {
			continue
		}
		seen[docID] = true
		files = append(files, inputFile{path: filepath.Join(dir, e.Name()), docID: docID})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(reindexJobs, "jobs"); err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, false, llmOverrides{})
	if err != nil {
		return err
	}
	defer s.Close()

	inputDir := s.cfg.InputDir(s.cfg.Corpus)
	files, err := scanInput(inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No .pdf, .epub, .txt, .md or .html files found in %s\n", inputDir)
		return nil
	}

	var (
		mu sync.Mutex
		ok int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexJobs)

	for _, f := range files {
		g.Go(func() error {
			report, err := s.engine.AddDocument(gctx, f.path, f.docID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] %s: %v\n", filepath.Base(f.path), err)
				return nil
			}
			ok++
			printReport(cmd.OutOrStdout(), report)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(cmd.OutOrStdout(), "\nIndexed %d of %d book(s) into corpus %q\n", ok, len(files), s.cfg.Corpus)
	return nil
}
