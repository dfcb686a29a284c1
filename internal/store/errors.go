package store

import "errors"

// Error kinds returned by store operations. Callers discriminate with
// errors.Is; every failure wraps exactly one of these.
var (
	// ErrNotFound means an operation referenced a memory id (or a
	// related target) that does not exist.
	ErrNotFound = errors.New("memory not found")

	// ErrConflict means a creation collided with an existing id, or
	// Build targeted a non-empty directory without overwrite.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument means a type outside the enum, an empty
	// required field, or an out-of-bounds importance.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIO means an underlying read, write, or rename failed.
	ErrIO = errors.New("io failure")
)
