package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lexforge/lexforge/internal/adapter/llm"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/resilience"
)

func chatServer(t *testing.T, content string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestClassifyParsesEngineList(t *testing.T) {
	srv := chatServer(t, `{"engines": ["timeline", "contradiction"]}`, func(r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("X-Matter-ID"); got != "matter-1" {
			t.Errorf("unexpected matter header %q", got)
		}
	})
	defer srv.Close()

	c := llm.NewClassifier(srv.URL, "test-key", "gpt-4o-mini")
	engines, err := c.Classify(context.Background(), "matter-1", "when did the breach happen and who denies it")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	want := []query.EngineID{query.EngineTimeline, query.EngineContradiction}
	if len(engines) != len(want) || engines[0] != want[0] || engines[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, engines)
	}
}

func TestClassifyToleratesCodeFences(t *testing.T) {
	srv := chatServer(t, "```json\n{\"engines\": [\"citation\"]}\n```", nil)
	defer srv.Close()

	c := llm.NewClassifier(srv.URL, "", "gpt-4o-mini")
	engines, err := c.Classify(context.Background(), "matter-1", "verify the citations")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(engines) != 1 || engines[0] != query.EngineCitation {
		t.Fatalf("expected [citation], got %v", engines)
	}
}

func TestClassifySkipsUnknownEnginesAndDedupes(t *testing.T) {
	srv := chatServer(t, `{"engines": ["retrieval", "astrology", "Retrieval"]}`, nil)
	defer srv.Close()

	c := llm.NewClassifier(srv.URL, "", "gpt-4o-mini")
	engines, err := c.Classify(context.Background(), "matter-1", "q")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(engines) != 1 || engines[0] != query.EngineRetrieval {
		t.Fatalf("expected [retrieval], got %v", engines)
	}
}

func TestClassifyNoUsableEngines(t *testing.T) {
	srv := chatServer(t, `{"engines": []}`, nil)
	defer srv.Close()

	c := llm.NewClassifier(srv.URL, "", "gpt-4o-mini")
	if _, err := c.Classify(context.Background(), "matter-1", "q"); err == nil {
		t.Fatal("expected error for empty engine list")
	}
}

func TestClassifyProxyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := llm.NewClassifier(srv.URL, "", "gpt-4o-mini")
	if _, err := c.Classify(context.Background(), "matter-1", "q"); err == nil {
		t.Fatal("expected error from proxy failure")
	}
}

func TestClassifyBreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := llm.NewClassifier(srv.URL, "", "gpt-4o-mini")
	c.SetBreaker(resilience.NewBreaker(1, time.Hour))

	if _, err := c.Classify(context.Background(), "matter-1", "q"); err == nil {
		t.Fatal("expected first call to fail")
	}
	_, err := c.Classify(context.Background(), "matter-1", "q")
	if err == nil || err.Error() != resilience.ErrCircuitOpen.Error() {
		t.Fatalf("expected circuit open error, got %v", err)
	}
}
