package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound               = errors.New("resource not found")
	ErrExperimentNotFound     = fmt.Errorf("%w: experiment", ErrNotFound)
	ErrRecommendationNotFound = fmt.Errorf("%w: recommendation", ErrNotFound)

	// Input errors
	ErrMalformedMetric = errors.New("malformed metric row")
	ErrInvalidInput    = errors.New("invalid input collection")
	ErrEmptySegment    = errors.New("segment has no metrics")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// Error constructors with context

// NewNotFoundError builds a not-found error for a resource and id.
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewMalformedMetricError builds a per-row metric error. Row indexes are
// zero-based positions in the raw input sequence.
func NewMalformedMetricError(row int, reason string) error {
	return fmt.Errorf("%w at row %d: %s", ErrMalformedMetric, row, reason)
}

// NewInvalidInputError builds a fatal collection-shape error.
func NewInvalidInputError(collection string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, collection, reason)
}

// Error checking helpers

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsMalformedMetricError(err error) bool {
	return errors.Is(err, ErrMalformedMetric)
}

func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
