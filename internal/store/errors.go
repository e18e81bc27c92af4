package store

import (
	"fmt"

	"discdb/internal/services"
)

// ConcurrencyConflictError reports a save against a stale version.
type ConcurrencyConflictError struct {
	ID      int64
	Version int64
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("contribution %d was modified concurrently (saved from version %d)", e.ID, e.Version)
}

// Is matches services.ErrConcurrencyConflict.
func (e *ConcurrencyConflictError) Is(target error) bool {
	return target == services.ErrConcurrencyConflict
}

func notFound(id int64) error {
	return fmt.Errorf("contribution %d: %w", id, services.ErrNotFound)
}
