// Package llm provides the HTTP client for the LLM proxy and the
// intent classifier built on its chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/resilience"
)

const classifierPrompt = `You route legal research queries to reasoning engines.
Engines:
- citation: verify legal citations found in the matter's documents
- timeline: reconstruct the chronology of events
- contradiction: find conflicting statements across documents
- retrieval: search document passages relevant to the query

Given the user query, reply with ONLY a JSON object of the form
{"engines": ["engine-name", ...]} listing every engine needed to answer it.`

// Classifier determines which engines a query requires by asking the
// LLM proxy. It implements the classifier port.
type Classifier struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClassifier creates a classifier backed by the LLM proxy at baseURL.
func NewClassifier(baseURL, apiKey, model string) *Classifier {
	return &Classifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Classifier) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify asks the proxy which engines the query needs. The matter ID
// travels only as a request header for proxy-side attribution; the
// classification itself is matter-agnostic.
func (c *Classifier) Classify(ctx context.Context, matterID, queryText string) ([]query.EngineID, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifierPrompt},
			{Role: "user", Content: queryText},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := c.doRequest(ctx, matterID, "/v1/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	engines, err := parseEngines(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return engines, nil
}

// parseEngines extracts the engine list from the model's reply,
// tolerating markdown code fences around the JSON.
func parseEngines(content string) ([]query.EngineID, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed struct {
		Engines []string `json:"engines"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse engine list: %w", err)
	}

	seen := make(map[query.EngineID]bool)
	var out []query.EngineID
	for _, name := range parsed.Engines {
		id := query.EngineID(strings.ToLower(strings.TrimSpace(name)))
		if !id.Valid() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("classifier returned no usable engines")
	}
	return out, nil
}

func (c *Classifier) doRequest(ctx context.Context, matterID, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if matterID != "" {
			req.Header.Set("X-Matter-ID", matterID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("llm proxy error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
