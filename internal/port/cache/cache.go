// Package cache defines the port interface for the engine-result cache.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value caching of engine results.
// Keys are scoped (matter, engine, query hash) by the caller; the cache
// itself is matter-agnostic bytes.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Clear drops every entry. Invoked when ingestion lands new
	// documents, since any cached engine result may now be stale.
	Clear(ctx context.Context) error
}
