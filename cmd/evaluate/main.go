// ABOUTME: Command-line runner for retrieval quality benchmarks
// ABOUTME: Executes built-in scenarios against temporary corpora and writes JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/harper/bookrag/benchmarks/retrieval"
	"github.com/harper/bookrag/internal/config"
	"github.com/harper/bookrag/internal/embedding"
	"github.com/harper/bookrag/internal/llm"
	"github.com/harper/bookrag/internal/logging"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run one scenario (specific, scoped, broad, graph). If empty, runs all.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	configPath := flag.String("config", config.FileName, "Path to a bookrag.toml config file")
	offline := flag.Bool("offline", false, "Use fake embeddings and no LLM")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *offline {
		cfg.LLMProvider = "none"
		cfg.EmbeddingProvider = "fake"
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	scenarios := retrieval.AllScenarios()
	if *scenarioID != "" {
		s, ok := retrieval.ScenarioByID(*scenarioID)
		if !ok {
			logger.Fatal().Str("scenario", *scenarioID).Msg("unknown scenario (valid options: specific, scoped, broad, graph)")
		}
		scenarios = []retrieval.Scenario{s}
	}

	ctx := context.Background()
	embedder := embedding.New(ctx, cfg, logger, 0)
	client, err := llm.New(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("LLM unavailable, graph scenarios will be skipped")
		client = nil
	}

	fmt.Println("========================================")
	fmt.Println("bookrag retrieval benchmarks")
	fmt.Println("========================================")
	fmt.Printf("Embeddings: %s\n", embedder.Name())
	fmt.Printf("LLM:        %s\n", llm.ModelName(client))

	runner := retrieval.NewRunner(cfg, embedder, client, logger, os.Stdout, *verbose)
	summary := retrieval.Summarize(runner.RunAll(ctx, scenarios))

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")
	for _, result := range summary.Results {
		fmt.Printf("\n%s: %s [%s]\n", result.ScenarioID, result.ScenarioName, result.QueryType)
		if result.Status == "SKIP" {
			fmt.Printf("  Status: SKIP (%s)\n", result.ErrorMessage)
			continue
		}
		fmt.Printf("  Faithfulness:   %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Overall:        %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", result.ErrorMessage)
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total: %d  Passed: %d  Failed: %d  Skipped: %d\n", summary.Total, summary.Passed, summary.Failed, summary.Skipped)
	fmt.Println("========================================")

	if err := retrieval.ExportResults(summary, *outputPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to export results")
	}
	fmt.Printf("Results exported to: %s\n", *outputPath)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
