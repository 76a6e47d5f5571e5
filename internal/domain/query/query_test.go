package query_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lexforge/lexforge/internal/domain/query"
)

func TestValidate_MissingMatter(t *testing.T) {
	req := &query.ExecutionRequest{QueryText: "what citations exist?"}
	if err := req.Validate(); !errors.Is(err, query.ErrMatterRequired) {
		t.Fatalf("expected ErrMatterRequired, got %v", err)
	}
}

func TestValidate_MissingQuery(t *testing.T) {
	req := &query.ExecutionRequest{MatterID: "m-1"}
	if err := req.Validate(); !errors.Is(err, query.ErrQueryRequired) {
		t.Fatalf("expected ErrQueryRequired, got %v", err)
	}
}

func TestValidate_UnknownEngine(t *testing.T) {
	req := &query.ExecutionRequest{
		MatterID:        "m-1",
		QueryText:       "q",
		RequiredEngines: []query.EngineID{"ocr"},
	}
	if err := req.Validate(); !errors.Is(err, query.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestValidate_EmptyEngineSetAllowed(t *testing.T) {
	req := &query.ExecutionRequest{MatterID: "m-1", QueryText: "q"}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSourceReference_DedupKey(t *testing.T) {
	a := query.SourceReference{DocumentID: "doc-28", PageNumber: 2}
	b := query.SourceReference{DocumentID: "doc-28", PageNumber: 2, TextPreview: "different preview"}
	c := query.SourceReference{DocumentID: "doc-28", PageNumber: 3}
	if a.DedupKey() != b.DedupKey() {
		t.Fatal("expected identical keys for same (doc, chunk, page)")
	}
	if a.DedupKey() == c.DedupKey() {
		t.Fatal("expected distinct keys for different pages")
	}
}

func TestFailed(t *testing.T) {
	r := query.Failed(query.EngineCitation, "backend unavailable", 250*time.Millisecond)
	if r.Success {
		t.Fatal("expected failed result")
	}
	if r.ErrorMessage != "backend unavailable" {
		t.Fatalf("unexpected message %q", r.ErrorMessage)
	}
	if r.ElapsedMS != 250 {
		t.Fatalf("expected 250ms, got %d", r.ElapsedMS)
	}
}

func TestEngineID_Valid(t *testing.T) {
	for _, e := range query.AllEngines() {
		if !e.Valid() {
			t.Fatalf("engine %s should be valid", e)
		}
	}
	if query.EngineID("embedding").Valid() {
		t.Fatal("unknown engine should not be valid")
	}
}
