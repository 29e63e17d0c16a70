package storage

import "errors"

// Common client storage errors
var (
	// ErrCardNotFound indicates that no card exists for the given id
	ErrCardNotFound = errors.New("card not found")

	// ErrEntryNotFound indicates that a mutation queue entry was not found
	ErrEntryNotFound = errors.New("mutation entry not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrStorageFull indicates that the local storage quota is exceeded.
	// Callers keep serving reads and skip new writes until space frees.
	ErrStorageFull = errors.New("local storage quota exceeded")
)
