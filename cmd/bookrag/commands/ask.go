// ABOUTME: CLI command to ask a question about indexed books
// ABOUTME: Classifies the query, retrieves context and synthesizes an answer
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/bookrag/internal/core"
	"github.com/harper/bookrag/internal/models"
)

var (
	askType      string
	askK         int
	askDocID     string
	askPrompt    string
	askNoAnalyze bool
	askSpec      bool
	askOllama    string
	askPort      string
	askModel     string
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask a question about the indexed books",
		Long: `Ask a question about the books in a corpus.

The query type decides how context is gathered:
  SPECIFIC  passages that match the question closely
  BROAD     the book summary plus passages spread across the whole book
  GRAPH     entities and relationships from the knowledge graph
  MIXED     a blend of all of the above
  AUTO      let the LLM classify the question (default)

Examples:
  bookrag ask "What is the name of Ahab's ship?"
  bookrag ask --type BROAD "What is this book about?"
  bookrag ask --doc "Moby Dick" --no-analyze "Who is Queequeg?"
  bookrag ask --spec`,
		Args: func(cmd *cobra.Command, args []string) error {
			if askSpec {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askType, "type", "AUTO", "Query type: SPECIFIC, BROAD, GRAPH, MIXED or AUTO")
	cmd.Flags().IntVar(&askK, "k", 0, "Number of results to retrieve (default depends on the query type)")
	cmd.Flags().StringVar(&askDocID, "doc", "", "Restrict retrieval to one doc_id")
	cmd.Flags().StringVar(&askDocID, "book-id", "", "Alias for --doc")
	cmd.Flags().StringVar(&askPrompt, "prompt", "", "Custom instruction for answer synthesis")
	cmd.Flags().BoolVar(&askNoAnalyze, "no-analyze", false, "Print the retrieved context instead of an answer")
	cmd.Flags().BoolVar(&askSpec, "spec", false, "Print corpus details and exit")
	cmd.Flags().StringVar(&askOllama, "ollama", "", "Ollama host override")
	cmd.Flags().StringVar(&askPort, "port", "", "Ollama port override")
	cmd.Flags().StringVar(&askModel, "model", "", "Ollama model override")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := validateNonNegativeInt(askK, "k"); err != nil {
		return err
	}
	queryType, err := models.ParseQueryType(askType)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, true, llmOverrides{host: askOllama, port: askPort, model: askModel})
	if err != nil {
		return err
	}
	defer s.Close()

	if askSpec {
		return printSpec(cmd, s)
	}

	answer, err := s.engine.Ask(ctx, core.AskOptions{
		QueryOptions: core.QueryOptions{
			Query: args[0],
			DocID: askDocID,
			K:     askK,
			Type:  queryType,
		},
		Prompt:      askPrompt,
		ContextOnly: askNoAnalyze,
	})
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), answer)
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Query type: %s (confidence %.2f), k=%d, %d result(s)\n",
			answer.Type, answer.Confidence, answer.K, len(answer.Results))
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	return nil
}
