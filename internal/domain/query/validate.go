package query

import (
	"errors"
	"fmt"
)

var (
	ErrMatterRequired = errors.New("matter_id is required")
	ErrQueryRequired  = errors.New("query_text is required")
	ErrUnknownEngine  = errors.New("unknown engine identifier")
)

// Validate checks the ExecutionRequest for structural correctness.
// RequiredEngines may be empty: classification decides the engine set,
// an empty set is a valid no-op plan.
func (r *ExecutionRequest) Validate() error {
	if r.MatterID == "" {
		return ErrMatterRequired
	}
	if r.QueryText == "" {
		return ErrQueryRequired
	}
	for _, e := range r.RequiredEngines {
		if !e.Valid() {
			return fmt.Errorf("engine %q: %w", e, ErrUnknownEngine)
		}
	}
	return nil
}
