// ABOUTME: CLI command to run retrieval without answer synthesis
// ABOUTME: Prints the raw results as a table or JSON
package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/bookrag/internal/core"
	"github.com/harper/bookrag/internal/models"
)

var (
	queryType  string
	queryK     int
	queryDocID string
)

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Show retrieval results for a query",
		Long: `Run classification and retrieval and print the results without
asking the LLM for an answer. Useful for inspecting what context a question gets.

Examples:
  bookrag query "white whale"
  bookrag query --type GRAPH "Ahab"
  bookrag query --format json --k 5 "Pequod"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&queryType, "type", "AUTO", "Query type: SPECIFIC, BROAD, GRAPH, MIXED or AUTO")
	cmd.Flags().IntVar(&queryK, "k", 0, "Number of results (default depends on the query type)")
	cmd.Flags().StringVar(&queryDocID, "doc", "", "Restrict retrieval to one doc_id")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := validateNonNegativeInt(queryK, "k"); err != nil {
		return err
	}
	qt, err := models.ParseQueryType(queryType)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, true, llmOverrides{})
	if err != nil {
		return err
	}
	defer s.Close()

	resp, err := s.engine.Query(ctx, core.QueryOptions{Query: args[0], DocID: queryDocID, K: queryK, Type: qt})
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), resp)
	}

	if len(resp.Results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results for query: %s\n", resp.Query)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tTYPE\tSOURCE\tSECTION\tPREVIEW\n")
	fmt.Fprintf(w, "-----\t----\t------\t-------\t-------\n")
	for _, r := range resp.Results {
		section := "-"
		if r.Metadata.SectionIndex != nil {
			section = strconv.Itoa(*r.Metadata.SectionIndex)
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\t%s\n",
			r.Metadata.Score,
			r.Metadata.Type,
			truncate(r.Metadata.Source, 24),
			section,
			truncate(oneLine(r.Content), 60))
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s query (confidence %.2f), k=%d: %d result(s)\n",
			resp.Type, resp.Confidence, resp.K, len(resp.Results))
	}
	return nil
}
