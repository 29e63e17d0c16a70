package api

import "encoding/json"

// Card is the wire representation of one flashcard in the collection.
// Content is opaque to the sync engine: only ID, UpdatedAt and Deleted
// participate in reconciliation.
type Card struct {
	ID        string          `json:"id"`
	Content   json.RawMessage `json:"content"`
	UpdatedAt int64           `json:"updated_at"` // unix milliseconds, authoritative
	Deleted   bool            `json:"deleted"`
}

// CollectionPage is one page of the paginated collection listing.
type CollectionPage struct {
	Cards  []Card `json:"cards"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Total  int    `json:"total"` // total records in the collection, including tombstones
}

// Machine-readable error codes returned by the gateway.
// Clients use these to split failures into transient and permanent classes.
const (
	ErrCodeValidation = "validation_failed"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeInternal   = "internal_error"
)

// ErrorResponse is the error body returned by the gateway.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
