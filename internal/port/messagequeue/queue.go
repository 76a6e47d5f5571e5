// Package messagequeue defines the message queue port (interface) used
// to reach the Python retrieval worker and to receive ingestion events.
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection.
	Close() error
}

// Subject constants for the queue subjects used by LexForge.
const (
	// Retrieval worker request/reply (correlation via RequestID).
	SubjectSearchRequest = "retrieval.search.request"
	SubjectSearchResult  = "retrieval.search.result"

	// Published by the ingestion pipeline when new documents land in a
	// matter. The orchestration core only consumes this to flush the
	// engine-result cache.
	SubjectDocumentsIngested = "documents.ingested"
)
