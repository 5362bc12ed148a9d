// ABOUTME: MCP tool handler implementations for the book retrieval server
// ABOUTME: Tool failures are returned as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/core"
	"github.com/harper/bookrag/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	engine     *core.Engine
	logger     *log.Logger
	shutdownWg *sync.WaitGroup // Track background indexing
}

func queryOptions(request mcp.CallToolRequest) (core.QueryOptions, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return core.QueryOptions{}, fmt.Errorf("query argument is required and must be a string")
	}
	// Agents may send labels outside the known set; those retrieve like SPECIFIC
	qt, err := models.ParseQueryType(request.GetString("query_type", ""))
	if err != nil {
		qt = models.QuerySpecific
	}
	return core.QueryOptions{
		Query: query,
		DocID: request.GetString("book_id", ""),
		K:     request.GetInt("k", 0),
		Type:  qt,
	}, nil
}

// AskBook handles the ask_book tool
func (h *Handlers) AskBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := queryOptions(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := h.engine.Ask(ctx, core.AskOptions{
		QueryOptions: opts,
		Prompt:       request.GetString("prompt", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	h.logger.Info().
		Str("type", string(answer.Type)).
		Int("results", len(answer.Results)).
		Bool("synthesized", answer.Synthesized).
		Msg("ask_book answered")
	return mcp.NewToolResultText(answer.Text), nil
}

// QueryBook handles the query_book tool
func (h *Handlers) QueryBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := queryOptions(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := h.engine.Query(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return jsonResult(resp)
}

// IndexBook handles the index_book tool
func (h *Handlers) IndexBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}
	docID := request.GetString("book_id", "")

	if request.GetBool("background", false) {
		h.shutdownWg.Add(1)
		go func() {
			defer h.shutdownWg.Done()
			report, err := h.engine.AddDocument(context.WithoutCancel(ctx), path, docID)
			if err != nil {
				h.logger.Error().Err(err).Str("path", path).Msg("background indexing failed")
				return
			}
			h.logger.Info().Str("doc_id", report.DocID).Int("chunks", report.Chunks).Msg("background indexing finished")
		}()
		return jsonResult(map[string]interface{}{
			"success": true,
			"status":  "indexing started",
			"path":    path,
		})
	}

	report, err := h.engine.AddDocument(ctx, path, docID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
	}

	warnings := make([]string, 0, len(report.EnrichmentErrors))
	for _, e := range report.EnrichmentErrors {
		warnings = append(warnings, e.Error())
	}
	return jsonResult(map[string]interface{}{
		"success":        true,
		"doc_id":         report.DocID,
		"skipped":        report.Skipped,
		"chunks":         report.Chunks,
		"sections":       report.Sections,
		"master_summary": report.MasterSummary,
		"entities":       report.Entities,
		"relations":      report.Relations,
		"warnings":       warnings,
	})
}

// RagStats handles the rag_stats tool
func (h *Handlers) RagStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.engine.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read stats: %v", err)), nil
	}
	return jsonResult(stats)
}

// Shutdown waits for background indexing to complete
func (h *Handlers) Shutdown() {
	h.logger.Info().Msg("waiting for background indexing to complete")
	h.shutdownWg.Wait()
	h.logger.Info().Msg("background indexing completed")
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
