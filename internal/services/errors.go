package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by operations on a product id that has no record.
var ErrNotFound = errors.New("product not found")

// ValidationError reports bad caller input. It is always returned before any
// file or database side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError reports an image store put or delete failure.
type StorageError struct {
	Op       string // "put" or "delete"
	Filename string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("image store %s %s: %v", e.Op, e.Filename, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RepositoryError reports a product store failure. When a compensating file
// cleanup was attempted, OrphanFile names the file involved and CleanupErr is
// its outcome (nil when the orphan was removed). Cleanup failure never masks
// the original error.
type RepositoryError struct {
	Op         string // "create", "get", "update" or "delete"
	ID         int64
	Err        error
	OrphanFile string
	CleanupErr error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("product store %s (id=%d): %v", e.Op, e.ID, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
