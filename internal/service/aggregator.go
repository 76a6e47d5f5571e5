package service

import (
	"strings"
	"time"

	"github.com/lexforge/lexforge/internal/domain/query"
)

// noResultsMessage is returned as the unified response when every
// engine failed. Never empty: the caller always gets a human-readable
// answer.
const noResultsMessage = "The analysis could not be completed: no engine produced a result for this query."

// AggregatorService merges per-engine results into the terminal
// orchestrator result.
type AggregatorService struct{}

// NewAggregatorService creates an AggregatorService.
func NewAggregatorService() *AggregatorService {
	return &AggregatorService{}
}

// Aggregate partitions results, deduplicates sources, averages
// confidence, and composes the unified response.
func (s *AggregatorService) Aggregate(queryID string, req query.ExecutionRequest, results []query.EngineResult, wallClock time.Duration) *query.OrchestratorResult {
	out := &query.OrchestratorResult{
		QueryID:       queryID,
		MatterID:      req.MatterID,
		QueryText:     req.QueryText,
		EngineResults: results,
		WallClockMS:   wallClock.Milliseconds(),
	}

	seen := make(map[string]bool)
	var summaries []string
	var confSum float64
	var confCount int

	for _, res := range results {
		out.TotalExecutionMS += res.ElapsedMS

		if !res.Success {
			out.FailedEngines = append(out.FailedEngines, res.Engine)
			continue
		}
		out.SuccessfulEngines = append(out.SuccessfulEngines, res.Engine)

		if res.Summary != "" {
			summaries = append(summaries, res.Summary)
		}

		// Results that report no confidence are excluded from the mean
		// entirely, not counted as zero.
		if res.Confidence != nil {
			confSum += *res.Confidence
			confCount++
		}

		// First occurrence wins; later duplicates are dropped.
		for _, src := range res.Sources {
			key := src.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Sources = append(out.Sources, src)
		}
	}

	if confCount > 0 {
		out.OverallConfidence = confSum / float64(confCount)
	}

	if len(summaries) == 0 {
		out.UnifiedResponse = noResultsMessage
	} else {
		out.UnifiedResponse = strings.Join(summaries, "\n\n")
	}

	return out
}
