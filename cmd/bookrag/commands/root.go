// ABOUTME: Root command and global flags for the bookrag CLI
// ABOUTME: Global flags select the corpus, data directory, config file and verbosity
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	corpusName   string
	dataDir      string
	configPath   string
)

const banner = `
██████╗  ██████╗  ██████╗ ██╗  ██╗██████╗  █████╗  ██████╗
██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝██╔══██╗██╔══██╗██╔════╝
██████╔╝██║   ██║██║   ██║█████╔╝ ██████╔╝███████║██║  ███╗
██╔══██╗██║   ██║██║   ██║██╔═██╗ ██╔══██╗██╔══██║██║   ██║
██████╔╝╚██████╔╝╚██████╔╝██║  ██╗██║  ██║██║  ██║╚██████╔╝
╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝
`

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookrag",
		Short: "Hybrid retrieval over ingested books",
		Long: banner + `
Index books into a per-corpus store of chunks, section summaries and a
knowledge graph, then ask questions answered from the most relevant context.

Queries are classified as SPECIFIC, BROAD, GRAPH or MIXED and each kind
retrieves context differently.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")
	cmd.PersistentFlags().StringVar(&corpusName, "corpus", "", "Corpus name (default from config, usually \"shared\")")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Root directory holding corpora")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a bookrag.toml config file")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewIndexCmd(),
		NewReindexCmd(),
		NewAskCmd(),
		NewQueryCmd(),
		NewStatsCmd(),
		NewGraphCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
