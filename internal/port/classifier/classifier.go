// Package classifier defines the intent classification port.
package classifier

import (
	"context"

	"github.com/lexforge/lexforge/internal/domain/query"
)

// Classifier decides which reasoning engines a query requires.
// The implementation is an external collaborator (LLM proxy); it may
// fail, and a failure is fatal to the query.
type Classifier interface {
	// Classify returns the engines required to answer queryText within
	// the given matter.
	Classify(ctx context.Context, matterID, queryText string) ([]query.EngineID, error)
}
