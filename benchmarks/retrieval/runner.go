// ABOUTME: Benchmark runner - ingests scenario books into a fresh store and scores one query
// ABOUTME: Each scenario gets its own temporary corpus directory for isolation

package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/core"
	"github.com/harper/bookrag/internal/embedding"
	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/storage"
)

// Runner executes retrieval benchmark scenarios
type Runner struct {
	cfg      *config.Config
	embedder embedding.Provider
	client   llm.Client
	logger   *log.Logger
	metrics  *MetricsCalculator
	out      io.Writer
	verbose  bool
}

// NewRunner creates a runner. client may be nil, in which case scenarios that
// need summaries or the graph are skipped and answers are the retrieved context.
func NewRunner(cfg *config.Config, embedder embedding.Provider, client llm.Client, logger *log.Logger, out io.Writer, verbose bool) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		cfg:      cfg,
		embedder: embedder,
		client:   client,
		logger:   logger,
		metrics:  NewMetricsCalculator(),
		out:      out,
		verbose:  verbose,
	}
}

// RunScenario ingests the scenario's books into a fresh store, asks its query and scores the answer
func (r *Runner) RunScenario(ctx context.Context, scenario Scenario) (Result, error) {
	if scenario.RequiresLLM && r.client == nil {
		return Result{
			ScenarioID:   scenario.ID,
			ScenarioName: scenario.Name,
			QueryType:    scenario.QueryType,
			Status:       "SKIP",
			ErrorMessage: "requires an LLM provider",
		}, nil
	}

	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	tmpDir, err := os.MkdirTemp("", "bookrag_bench_"+scenario.ID+"_")
	if err != nil {
		return Result{}, fmt.Errorf("creating scenario directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	store, err := storage.Open(ctx, tmpDir, r.embedder, r.logger)
	if err != nil {
		return Result{}, fmt.Errorf("opening scenario storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	engine, err := core.NewEngine(store, r.client, r.cfg, r.logger)
	if err != nil {
		return Result{}, err
	}

	for _, book := range scenario.Books {
		report, err := engine.AddContent(ctx, book.Content, book.Source, book.DocID)
		if err != nil {
			return Result{}, fmt.Errorf("indexing %s: %w", book.DocID, err)
		}
		if r.verbose {
			fmt.Fprintf(r.out, "[index] %s: %d chunks, %d sections, %d entities\n",
				report.DocID, report.Chunks, report.Sections, report.Entities)
		}
	}

	answer, err := engine.Ask(ctx, core.AskOptions{
		QueryOptions: core.QueryOptions{
			Query: scenario.Query,
			DocID: scenario.DocID,
			Type:  scenario.QueryType,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("asking: %w", err)
	}

	retrieved := make([]string, 0, len(answer.Results))
	for _, res := range answer.Results {
		retrieved = append(retrieved, res.Content)
	}

	if r.verbose {
		fmt.Fprintf(r.out, "[query] %s (%s, k=%d): %d result(s)\n", scenario.Query, answer.Type, answer.K, len(retrieved))
	}

	return r.metrics.Evaluate(scenario, answer.Text, retrieved), nil
}

// RunAll runs every scenario, recording failures as FAIL results
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := r.RunScenario(ctx, scenario)
		if err != nil {
			r.logger.Error().Err(err).Str("scenario", scenario.ID).Msg("scenario failed")
			result = Result{
				ScenarioID:   scenario.ID,
				ScenarioName: scenario.Name,
				QueryType:    scenario.QueryType,
				Status:       "FAIL",
				ErrorMessage: err.Error(),
			}
		}
		results = append(results, result)
	}
	return results
}

// Summary counts results by status
type Summary struct {
	Timestamp string   `json:"timestamp"`
	Total     int      `json:"total"`
	Passed    int      `json:"passed"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Results   []Result `json:"results"`
}

// Summarize tallies results
func Summarize(results []Result) Summary {
	s := Summary{
		Timestamp: time.Now().Format(time.RFC3339),
		Total:     len(results),
		Results:   results,
	}
	for _, r := range results {
		switch r.Status {
		case "PASS":
			s.Passed++
		case "SKIP":
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// ExportResults writes the summary as JSON
func ExportResults(summary Summary, outputPath string) error {
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
