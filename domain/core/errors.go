package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrOrderNotFound = fmt.Errorf("%w: order", ErrNotFound)
	ErrActorNotFound = fmt.Errorf("%w: actor", ErrNotFound)

	// Load coordination errors
	ErrStaleLoad    = errors.New("load superseded by a newer request")
	ErrLoadTimedOut = errors.New("load exceeded its deadline")

	// Aggregation errors
	ErrUnknownGranularity = errors.New("unknown bucket granularity")
	ErrEmptyRange         = errors.New("bucket range contains no observations")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewFetchError(source string, err error) error {
	return fmt.Errorf("fetch from %s failed: %w", source, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStaleLoad(err error) bool {
	return errors.Is(err, ErrStaleLoad)
}
