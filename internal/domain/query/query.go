// Package query defines the domain entities for one orchestrated query:
// the execution request, per-engine results, and the terminal
// orchestrator result handed back to the caller.
package query

import (
	"encoding/json"
	"fmt"
	"time"
)

// EngineID identifies a reasoning engine variant.
type EngineID string

const (
	EngineCitation      EngineID = "citation"
	EngineTimeline      EngineID = "timeline"
	EngineContradiction EngineID = "contradiction"
	EngineRetrieval     EngineID = "retrieval"
)

// AllEngines returns every known engine identifier.
func AllEngines() []EngineID {
	return []EngineID{EngineCitation, EngineTimeline, EngineContradiction, EngineRetrieval}
}

// Valid reports whether e is a known engine identifier.
func (e EngineID) Valid() bool {
	switch e {
	case EngineCitation, EngineTimeline, EngineContradiction, EngineRetrieval:
		return true
	}
	return false
}

// ExecutionRequest is the read-only input to one orchestration pass.
// MatterID is the isolation boundary and must travel unchanged through
// every downstream call.
type ExecutionRequest struct {
	MatterID        string            `json:"matter_id"`
	QueryText       string            `json:"query_text"`
	RequiredEngines []EngineID        `json:"required_engines"`
	Context         map[string]string `json:"context,omitempty"`
}

// SourceReference points at the document evidence backing a finding.
// Two references are duplicates when (DocumentID, ChunkID, PageNumber)
// match exactly.
type SourceReference struct {
	DocumentID  string   `json:"document_id"`
	ChunkID     string   `json:"chunk_id,omitempty"`
	PageNumber  int      `json:"page_number,omitempty"`
	TextPreview string   `json:"text_preview,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Engine      EngineID `json:"engine,omitempty"`
}

// DedupKey returns the exact-match identity used for source deduplication.
func (s SourceReference) DedupKey() string {
	return fmt.Sprintf("%s|%s|%d", s.DocumentID, s.ChunkID, s.PageNumber)
}

// EngineResult is the outcome of one engine execution. Exactly one of
// (Success=true with Payload/Summary) or (Success=false with
// ErrorMessage) holds. Immutable after creation.
type EngineResult struct {
	Engine       EngineID          `json:"engine"`
	Success      bool              `json:"success"`
	Payload      json.RawMessage   `json:"payload,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	Sources      []SourceReference `json:"sources,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
	ElapsedMS    int64             `json:"elapsed_ms"`
	Confidence   *float64          `json:"confidence,omitempty"`
}

// Failed builds a failed EngineResult for the given engine.
func Failed(engine EngineID, errMsg string, elapsed time.Duration) EngineResult {
	return EngineResult{
		Engine:       engine,
		Success:      false,
		ErrorMessage: errMsg,
		ElapsedMS:    elapsed.Milliseconds(),
	}
}

// OrchestratorResult is the terminal artifact of one query. It is never
// mutated after construction; persistence of the audit record happens
// through the audit sink, not here.
type OrchestratorResult struct {
	QueryID           string            `json:"query_id"`
	MatterID          string            `json:"matter_id"`
	QueryText         string            `json:"query_text"`
	SuccessfulEngines []EngineID        `json:"successful_engines"`
	FailedEngines     []EngineID        `json:"failed_engines"`
	UnifiedResponse   string            `json:"unified_response"`
	Sources           []SourceReference `json:"sources"`
	OverallConfidence float64           `json:"overall_confidence"`
	EngineResults     []EngineResult    `json:"engine_results"`
	TotalExecutionMS  int64             `json:"total_execution_ms"`
	WallClockMS       int64             `json:"wall_clock_ms"`
}
