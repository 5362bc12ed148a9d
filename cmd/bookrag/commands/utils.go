// ABOUTME: Shared setup and formatting helpers for CLI commands
// ABOUTME: Builds config, logger, embedder, LLM client and engine for one corpus
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/core"
	"github.com/harper/bookrag/internal/embedding"
	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/logging"
	"github.com/harper/bookrag/internal/storage"
)

// llmOverrides carries per-command provider flags (ask --ollama/--port/--model)
type llmOverrides struct {
	host  string
	port  string
	model string
}

// loadConfig resolves configuration: flags over env over TOML file over defaults
func loadConfig(over llmOverrides) (*config.Config, error) {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path = config.FileName
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if corpusName != "" {
		cfg.Corpus = corpusName
	}
	if over.host != "" {
		cfg.OllamaHost = over.host
		cfg.OllamaBaseURL = ""
	}
	if over.port != "" {
		cfg.OllamaPort = over.port
		cfg.OllamaBaseURL = ""
	}
	if over.model != "" {
		cfg.OllamaModel = over.model
	}

	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "error"
	}
	return cfg, nil
}

// session is everything a command needs to talk to one corpus
type session struct {
	cfg    *config.Config
	logger *log.Logger
	store  *storage.Storage
	engine *core.Engine
}

// openSession opens the corpus store. Read-only sessions fall back to the shared
// corpus when the named one has not been indexed; writers always use their own.
func openSession(ctx context.Context, cmd *cobra.Command, readOnly bool, over llmOverrides) (*session, error) {
	cfg, err := loadConfig(over)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	dir := cfg.StorageDir(cfg.Corpus)
	if readOnly {
		dir, err = storage.ResolveDir(cfg, cfg.Corpus)
		if err != nil {
			return nil, err
		}
	}

	dim, err := storage.PeekDimension(ctx, dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("could not read stored embedding dimension")
	}
	embedder := embedding.New(ctx, cfg, logger, dim)

	client, err := llm.New(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.LLMProvider).Msg("LLM unavailable, continuing without summaries, graph or synthesis")
		client = nil
	}

	store, err := storage.Open(ctx, dir, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	engine, err := core.NewEngine(store, client, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, store: store, engine: engine}, nil
}

// Close releases the store
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("error closing storage")
	}
}

// isNoStore reports whether err means the corpus has never been indexed
func isNoStore(err error) bool {
	return errors.Is(err, storage.ErrNoStore)
}

// writeJSON pretty-prints v
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(w, "%s\n", data)
	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// oneLine collapses newlines so previews fit in a table cell
func oneLine(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || r == ' ' {
			if !space {
				out = append(out, ' ')
			}
			space = true
			continue
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// validateNonNegativeInt returns error if n is negative
func validateNonNegativeInt(n int, name string) error {
	if n < 0 {
		return fmt.Errorf("%s must not be negative, got %d", name, n)
	}
	return nil
}
