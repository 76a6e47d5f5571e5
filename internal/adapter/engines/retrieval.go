package engines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/messagequeue"
)

// Retrieval runs hybrid search through the retrieval worker over the
// message queue. Requests are published with a correlation ID and the
// reply is matched back to the in-flight waiter.
type Retrieval struct {
	queue messagequeue.Queue
	opts  Options
	topK  int

	mu      sync.Mutex
	waiters map[string]chan messagequeue.SearchResultPayload
	stop    func()
}

// NewRetrieval creates the retrieval engine adapter. Start must be
// called before Execute.
func NewRetrieval(queue messagequeue.Queue, opts Options, topK int) *Retrieval {
	return &Retrieval{
		queue:   queue,
		opts:    opts,
		topK:    topK,
		waiters: make(map[string]chan messagequeue.SearchResultPayload),
	}
}

// ID returns the engine identifier.
func (a *Retrieval) ID() query.EngineID { return query.EngineRetrieval }

// Start subscribes to the search result subject and begins routing
// replies to their waiters.
func (a *Retrieval) Start(ctx context.Context) error {
	stop, err := a.queue.Subscribe(ctx, messagequeue.SubjectSearchResult, a.handleResult)
	if err != nil {
		return fmt.Errorf("subscribe search results: %w", err)
	}
	a.stop = stop
	return nil
}

// Close stops the result subscription.
func (a *Retrieval) Close() {
	if a.stop != nil {
		a.stop()
	}
}

func (a *Retrieval) handleResult(ctx context.Context, subject string, data []byte) error {
	var payload messagequeue.SearchResultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("unmarshal search result: %w", err)
	}

	a.mu.Lock()
	ch, ok := a.waiters[payload.RequestID]
	if ok {
		delete(a.waiters, payload.RequestID)
	}
	a.mu.Unlock()

	if ok {
		ch <- payload
	}
	return nil
}

type retrievalPayload struct {
	Hits []messagequeue.SearchHit `json:"hits"`
}

// Execute publishes a search request scoped to the matter and waits for
// the correlated reply or context cancellation.
func (a *Retrieval) Execute(ctx context.Context, matterID, queryText string, qctx map[string]string) query.EngineResult {
	return run(ctx, a.opts, a.ID(), matterID, queryText, func(ctx context.Context) (query.EngineResult, error) {
		requestID := uuid.NewString()
		ch := make(chan messagequeue.SearchResultPayload, 1)

		a.mu.Lock()
		a.waiters[requestID] = ch
		a.mu.Unlock()
		defer func() {
			a.mu.Lock()
			delete(a.waiters, requestID)
			a.mu.Unlock()
		}()

		req := messagequeue.SearchRequestPayload{
			RequestID: requestID,
			MatterID:  matterID,
			Query:     queryText,
			TopK:      a.topK,
		}
		raw, err := json.Marshal(req)
		if err != nil {
			return query.EngineResult{}, fmt.Errorf("marshal search request: %w", err)
		}
		if err := a.queue.Publish(ctx, messagequeue.SubjectSearchRequest, raw); err != nil {
			return query.EngineResult{}, fmt.Errorf("publish search request: %w", err)
		}

		select {
		case <-ctx.Done():
			return query.EngineResult{}, fmt.Errorf("await search result: %w", ctx.Err())
		case payload := <-ch:
			if payload.Error != "" {
				return query.EngineResult{}, errors.New(payload.Error)
			}

			sources := make([]query.SourceReference, 0, len(payload.Hits))
			for _, h := range payload.Hits {
				sources = append(sources, query.SourceReference{
					DocumentID:  h.DocumentID,
					ChunkID:     h.ChunkID,
					PageNumber:  h.PageNumber,
					TextPreview: h.Snippet,
					Engine:      query.EngineRetrieval,
				})
			}

			body, err := json.Marshal(retrievalPayload{Hits: payload.Hits})
			if err != nil {
				return query.EngineResult{}, fmt.Errorf("marshal payload: %w", err)
			}
			return query.EngineResult{
				Payload: body,
				Summary: fmt.Sprintf("retrieved %d passages", len(payload.Hits)),
				Sources: sources,
			}, nil
		}
	})
}
