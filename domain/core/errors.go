package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSnapshotNotFound = fmt.Errorf("%w: snapshot", ErrNotFound)
	ErrModelNotFound    = fmt.Errorf("%w: model", ErrNotFound)
	ErrBaselineNotFound = fmt.Errorf("%w: baseline snapshot", ErrNotFound)

	// Input validation errors - fatal, never retried
	ErrEmptyDataset   = errors.New("empty input arrays")
	ErrLengthMismatch = errors.New("input arrays must have the same length")
	ErrMissingScores  = errors.New("prediction scores required")

	// Configuration errors
	ErrInvalidConfidence = errors.New("confidence level must be in (0, 1)")
	ErrInvalidThreshold  = errors.New("threshold out of range")
	ErrInvalidIterations = errors.New("bootstrap iterations must be positive")

	// Comparison errors
	ErrUnsupportedMetric = errors.New("unsupported metric for comparison")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewLengthMismatchError(truthLen, predLen int) error {
	return fmt.Errorf("%w: ground truth has %d elements, predictions have %d", ErrLengthMismatch, truthLen, predLen)
}

func NewUnsupportedMetricError(metric string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedMetric, metric)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputValidationError reports whether err is a fatal input defect
// (empty arrays or mismatched lengths). These are caller bugs, not
// conditions the engine recovers from.
func IsInputValidationError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrMissingScores)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfidence) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrInvalidIterations)
}
