// ABOUTME: Metrics for retrieval benchmarks: answer faithfulness and context recall
// ABOUTME: Deterministic scoring against ground truth strings, case-insensitive

package retrieval

import (
	"fmt"
	"strings"

	"github.com/harper/bookrag/internal/util"
)

// PassThreshold is the minimum score on both metrics for a PASS
const PassThreshold = 0.9

// MetricsCalculator computes scores for benchmark scenarios
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateFaithfulness computes faithfulness score (0.0-1.0).
// Every expected item present and no forbidden item present scores 1.0;
// one kind of failure scores 0.5; both score 0.0.
func (m *MetricsCalculator) CalculateFaithfulness(
	response string,
	expectedInResponse []string,
	forbiddenInResponse []string,
) (float64, string) {
	responseUpper := strings.ToUpper(response)

	missingItems := []string{}
	for _, expected := range expectedInResponse {
		if !strings.Contains(responseUpper, strings.ToUpper(expected)) {
			missingItems = append(missingItems, expected)
		}
	}

	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInResponse {
		if strings.Contains(responseUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	switch {
	case len(missingItems) == 0 && len(forbiddenFound) == 0:
		return 1.0, "Perfect faithfulness - answer matches expected ground truth"
	case len(missingItems) > 0 && len(forbiddenFound) > 0:
		return 0.0, fmt.Sprintf(
			"Faithfulness failure - missing expected items: %v, forbidden items found: %v",
			missingItems, forbiddenFound,
		)
	case len(missingItems) > 0:
		return 0.5, fmt.Sprintf("Partial faithfulness - missing expected items: %v", missingItems)
	default:
		return 0.5, fmt.Sprintf("Partial faithfulness - forbidden items found: %v", forbiddenFound)
	}
}

// CalculateContextRecall is the share of expected items found in the retrieved context
func (m *MetricsCalculator) CalculateContextRecall(
	retrievedContext []string,
	expectedContextItems []string,
) (float64, string) {
	if len(expectedContextItems) == 0 {
		return 1.0, "No context retrieval required"
	}

	allContext := strings.ToUpper(strings.Join(retrievedContext, " "))

	foundCount := 0
	missingItems := []string{}
	for _, expectedItem := range expectedContextItems {
		if strings.Contains(allContext, strings.ToUpper(expectedItem)) {
			foundCount++
		} else {
			missingItems = append(missingItems, expectedItem)
		}
	}

	recall := float64(foundCount) / float64(len(expectedContextItems))
	if recall == 1.0 {
		return 1.0, "Perfect context recall - all expected items retrieved"
	}

	return recall, fmt.Sprintf("Partial context recall (%.2f) - missing items: %v", recall, missingItems)
}

// Evaluate scores one scenario run
func (m *MetricsCalculator) Evaluate(scenario Scenario, answer string, retrievedContext []string) Result {
	faithfulness, faithfulnessDetail := m.CalculateFaithfulness(
		answer,
		scenario.GroundTruth.ExpectedInResponse,
		scenario.GroundTruth.ForbiddenInResponse,
	)
	recall, recallDetail := m.CalculateContextRecall(
		retrievedContext,
		scenario.GroundTruth.ExpectedContextItems,
	)

	status := "FAIL"
	if faithfulness >= PassThreshold && recall >= PassThreshold {
		status = "PASS"
	}

	return Result{
		ScenarioID:         scenario.ID,
		ScenarioName:       scenario.Name,
		QueryType:          scenario.QueryType,
		FaithfulnessScore:  faithfulness,
		ContextRecallScore: recall,
		OverallScore:       (faithfulness + recall) / 2.0,
		Status:             status,
		Details: map[string]interface{}{
			"faithfulness_detail": faithfulnessDetail,
			"recall_detail":       recallDetail,
			"answer":              util.TruncateRunes(answer, 200),
			"context_items":       len(retrievedContext),
		},
	}
}
