// Package persistence defines the storage error contract shared by all repository
// implementations. Application code matches on these sentinels and never sees
// driver-specific errors.
package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned for check constraint failures.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing or still
	// referenced.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
