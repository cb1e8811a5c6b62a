package model

import (
	"errors"
	"fmt"
)

// ErrValidation malformed input: unknown side or asset type, non-positive qty, negative price/fee.
var ErrValidation = errors.New("validation error")

// ErrNotFound the referenced symbol or id has no matching asset.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous the referenced symbol matches more than one asset type.
var ErrAmbiguous = errors.New("ambiguous symbol")

// ErrPersistence underlying storage read/write failure.
var ErrPersistence = errors.New("persistence error")

// ErrDuplicate uniqueness violation; it is a persistence error as well.
var ErrDuplicate = fmt.Errorf("%w: duplicate", ErrPersistence)

// Invalid builds a validation error for a named field.
func Invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, fmt.Sprintf(format, args...))
}

// Persistence wraps a storage error so callers can match ErrPersistence.
// Errors that already carry one of the taxonomy sentinels pass through.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) || errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
