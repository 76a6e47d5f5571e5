// Package engines provides the adapters that normalize each reasoning
// engine behind the uniform execution contract. Every adapter stamps
// the matter ID into its backend calls, converts failures into failed
// results, and never lets a panic escape its boundary.
package engines

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/cache"
	"github.com/lexforge/lexforge/internal/resilience"
)

// Options carries the shared collaborators every engine adapter uses.
type Options struct {
	Cache   cache.Cache
	Breaker *resilience.Breaker

	// EvidenceLimit caps how many rows an engine reads per query.
	EvidenceLimit int

	// CacheTTL bounds how long a successful result may be served from
	// cache before recompute.
	CacheTTL time.Duration
}

// cacheKey scopes a cached result to (matter, engine, query). The query
// text is hashed so verbatim text never appears in cache keys.
func cacheKey(matterID string, engine query.EngineID, queryText string) string {
	sum := sha256.Sum256([]byte(queryText))
	return fmt.Sprintf("%s|%s|%s", matterID, engine, hex.EncodeToString(sum[:]))
}

// execFn produces a successful result or an error. The guard converts
// errors and panics into failed results and handles caching and timing.
type execFn func(ctx context.Context) (query.EngineResult, error)

// run executes fn under the shared guard: cache consult, circuit
// breaker, panic recovery, and elapsed-time stamping. Only successful
// results are cached.
func run(ctx context.Context, opts Options, id query.EngineID, matterID, queryText string, fn execFn) (out query.EngineResult) {
	key := cacheKey(matterID, id, queryText)
	if opts.Cache != nil {
		if raw, ok, err := opts.Cache.Get(ctx, key); err == nil && ok {
			var cached query.EngineResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached
			}
		}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("engine panic recovered", "engine", id, "matter_id", matterID, "panic", r)
			out = query.Failed(id, fmt.Sprintf("engine panic: %v", r), time.Since(start))
		}
	}()

	var res query.EngineResult
	call := func() error {
		r, err := fn(ctx)
		if err != nil {
			return err
		}
		res = r
		return nil
	}

	var err error
	if opts.Breaker != nil {
		err = opts.Breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return query.Failed(id, err.Error(), time.Since(start))
	}

	res.Engine = id
	res.Success = true
	res.ElapsedMS = time.Since(start).Milliseconds()

	if opts.Cache != nil {
		if raw, err := json.Marshal(res); err == nil {
			_ = opts.Cache.Set(ctx, key, raw, opts.CacheTTL)
		}
	}
	return res
}

func ptr(f float64) *float64 { return &f }

// meanConfidence averages the given values, returning nil when empty.
func meanConfidence(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return ptr(sum / float64(len(vals)))
}
