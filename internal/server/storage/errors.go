package storage

import "errors"

// Common server storage errors
var (
	// ErrCardNotFound indicates that no card exists for the given id
	ErrCardNotFound = errors.New("card not found")
)
