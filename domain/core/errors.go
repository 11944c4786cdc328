package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Load errors
	ErrDataUnavailable = errors.New("dataset unavailable")

	// Calculation errors
	ErrColumnNotFound   = errors.New("column not found")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrEmptyDataset     = errors.New("dataset has no rows")
	ErrNonFiniteValue   = errors.New("non-finite value")

	// Rendering errors
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrInvalidPage        = errors.New("invalid page definition")
)

// Error constructors with context
func NewDataUnavailableError(name string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrDataUnavailable, name)
	}
	return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, name, cause)
}

func NewColumnNotFoundError(dataset, column string) error {
	return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, dataset, column)
}

func NewInsufficientDataError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, reason)
}

func NewNonFiniteValueError(dataset, column string, row int) error {
	return fmt.Errorf("%w: %s.%s row %d", ErrNonFiniteValue, dataset, column, row)
}

func NewInvalidPageError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPage, reason)
}

// Error checking helpers
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

// IsCalculationError reports whether err came from a derived-view computation.
func IsCalculationError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrNonFiniteValue)
}
