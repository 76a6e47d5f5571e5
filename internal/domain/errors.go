// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the request is malformed or incomplete.
var ErrValidation = errors.New("validation failed")

// ErrClassification indicates intent classification could not determine
// the required engines.
var ErrClassification = errors.New("classification failed")

// ErrConfiguration indicates the engine dependency configuration is
// unusable (for example, a dependency cycle).
var ErrConfiguration = errors.New("configuration error")
