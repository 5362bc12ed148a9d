// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes book indexing and retrieval to LLM agents via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/bookrag/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs bookrag as an MCP (Model Context Protocol) server over stdio with the
tools ask_book, query_book, index_book and rag_stats for one corpus.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  bookrag --corpus whalers mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "bookrag": {
  #       "command": "bookrag",
  #       "args": ["--corpus", "whalers", "mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd, false, llmOverrides{})
	if err != nil {
		return err
	}
	defer s.Close()

	server := mcpserver.NewMCPServer("bookrag", versionInfo.Version)
	handlers := mcp.RegisterTools(server, s.engine, s.logger)

	s.logger.Info().Str("corpus", s.cfg.Corpus).Str("dir", s.store.Dir()).Msg("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutdown signal received, gracefully shutting down")
	case err := <-serverErr:
		handlers.Shutdown()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	handlers.Shutdown()
	s.logger.Info().Msg("shutdown complete")
	return nil
}
