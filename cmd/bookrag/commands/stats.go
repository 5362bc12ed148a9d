// ABOUTME: CLI command to describe a corpus store
// ABOUTME: Shared with ask --spec; prints counts, models and indexed doc_ids
package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show what a corpus holds",
		Long: `Show storage location, embedding model, chunk, summary and graph counts,
chunking settings, the LLM in use and the indexed doc_ids.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, true, llmOverrides{})
			if err != nil {
				return err
			}
			defer s.Close()
			return printSpec(cmd, s)
		},
	}
}

func printSpec(cmd *cobra.Command, s *session) error {
	stats, err := s.engine.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	sort.Strings(stats.IndexedDocIDs)

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"corpus":        s.cfg.Corpus,
			"storage_dir":   s.store.Dir(),
			"vector_store":  "sqlite",
			"chunk_size":    s.cfg.ChunkSize,
			"chunk_overlap": s.cfg.ChunkOverlap,
			"llm_provider":  s.cfg.LLMProvider,
			"llm_model":     s.engine.ModelName(),
			"stats":         stats,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Corpus:          %s\n", s.cfg.Corpus)
	fmt.Fprintf(w, "Storage:         %s\n", s.store.Dir())
	fmt.Fprintf(w, "Vector store:    sqlite\n")
	fmt.Fprintf(w, "Embedding model: %s\n", stats.EmbeddingModel)
	fmt.Fprintf(w, "Chunks:          %d\n", stats.TotalChunks)
	fmt.Fprintf(w, "Summaries:       %d\n", stats.TotalSummaries)
	fmt.Fprintf(w, "Graph:           %d nodes, %d edges\n", stats.GraphNodes, stats.GraphEdges)
	fmt.Fprintf(w, "Chunking:        size %d, overlap %d\n", s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if s.cfg.LLMProvider == "ollama" {
		fmt.Fprintf(w, "LLM:             %s:%s %s\n", s.cfg.OllamaHost, s.cfg.OllamaPort, s.engine.ModelName())
	} else {
		fmt.Fprintf(w, "LLM:             %s %s\n", s.cfg.LLMProvider, s.engine.ModelName())
	}
	if len(stats.IndexedDocIDs) == 0 {
		fmt.Fprintf(w, "Indexed books:   (none)\n")
	} else {
		fmt.Fprintf(w, "Indexed books:   %s\n", strings.Join(stats.IndexedDocIDs, ", "))
	}
	return nil
}
