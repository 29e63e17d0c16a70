package models

import "encoding/json"

// Operation is the kind of a queued local mutation.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// MutationEntry is one not-yet-acknowledged local write. Entries are
// appended when a local mutation happens and removed only when the gateway
// acknowledges the corresponding operation.
type MutationEntry struct {
	Seq           uint64          `json:"seq"` // assigned by the queue, FIFO order
	CardID        string          `json:"card_id"`
	Op            Operation       `json:"op"`
	Payload       json.RawMessage `json:"payload"` // card snapshot at mutation time
	CreatedAt     int64           `json:"created_at"` // unix milliseconds
	AttemptCount  int             `json:"attempt_count"`
	NextAttemptAt int64           `json:"next_attempt_at"` // unix milliseconds, 0 = immediately
	Parked        bool            `json:"parked"` // permanently rejected, needs user resolution
	LastError     string          `json:"last_error,omitempty"`
}
