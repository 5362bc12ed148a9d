// ABOUTME: MCP tool definitions and registration for the book retrieval server
// ABOUTME: Exposes ask_book, query_book, index_book and rag_stats over one Engine
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/core"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, engine *core.Engine, logger *log.Logger) *Handlers {
	handlers := NewHandlers(engine, logger)

	// 1. ask_book - classify, retrieve and synthesize an answer
	server.AddTool(mcp.Tool{
		Name: "ask_book",
		Description: "Ask a question about a book that has been indexed. Returns an answer built from the most " +
			"relevant passages, chapter and book summaries, and knowledge graph entries. Handles both broad " +
			"story-wide questions and specific fact retrieval.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The question you want to ask about the book",
				},
				"book_id": map[string]interface{}{
					"type":        "string",
					"description": "The doc_id of the book to search in. If omitted, searches all indexed books.",
				},
				"query_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"AUTO", "SPECIFIC", "BROAD", "GRAPH", "MIXED"},
					"description": "Retrieval strategy (default: AUTO, which classifies the question)",
					"default":     "AUTO",
				},
				"prompt": map[string]interface{}{
					"type":        "string",
					"description": "Optional instruction replacing the default analysis prompt",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.AskBook)

	// 2. query_book - raw retrieval results without synthesis
	server.AddTool(mcp.Tool{
		Name:        "query_book",
		Description: "Retrieve raw context blocks (chunks, summaries, graph entries) for a question without generating an answer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"book_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional doc_id filter",
				},
				"query_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"AUTO", "SPECIFIC", "BROAD", "GRAPH", "MIXED"},
					"description": "Retrieval strategy (default: AUTO)",
					"default":     "AUTO",
				},
				"k": map[string]interface{}{
					"type":        "number",
					"description": "Number of results (default depends on query type)",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.QueryBook)

	// 3. index_book - ingest a file
	server.AddTool(mcp.Tool{
		Name:        "index_book",
		Description: "Index a book file (.txt, .md, .html, .epub, .pdf) into the corpus. Re-indexing an existing doc_id is a no-op.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the book file",
				},
				"book_id": map[string]interface{}{
					"type":        "string",
					"description": "doc_id to index under (default: file name with underscores as spaces)",
				},
				"background": map[string]interface{}{
					"type":        "boolean",
					"description": "Return immediately and index in the background (default: false)",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}, handlers.IndexBook)

	// 4. rag_stats - corpus statistics
	server.AddTool(mcp.Tool{
		Name:        "rag_stats",
		Description: "Show how many chunks, summaries and graph entries the corpus holds and which books are indexed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.RagStats)

	return handlers
}

// NewHandlers creates Handlers without registering them
func NewHandlers(engine *core.Engine, logger *log.Logger) *Handlers {
	return &Handlers{
		engine:     engine,
		logger:     logger,
		shutdownWg: &sync.WaitGroup{},
	}
}
