package models

import "encoding/json"

// SyncState describes where a locally stored card stands relative to the
// remote collection.
type SyncState string

const (
	// SyncStateSynced means the local record matches the last acknowledged
	// remote state.
	SyncStateSynced SyncState = "synced"
	// SyncStatePendingCreate means the card was created locally and the
	// create has not been acknowledged by the gateway yet.
	SyncStatePendingCreate SyncState = "pending_create"
	// SyncStatePendingUpdate means a local edit is queued for push.
	SyncStatePendingUpdate SyncState = "pending_update"
	// SyncStatePendingDelete means the card is tombstoned locally and the
	// delete has not been acknowledged yet.
	SyncStatePendingDelete SyncState = "pending_delete"
	// SyncStateError means the gateway permanently rejected the pending
	// mutation; the entry is parked until the user resolves it.
	SyncStateError SyncState = "sync_error"
)

// Pending reports whether the state represents a not-yet-acknowledged
// local mutation.
func (s SyncState) Pending() bool {
	switch s {
	case SyncStatePendingCreate, SyncStatePendingUpdate, SyncStatePendingDelete:
		return true
	}
	return false
}

// Flashcard is the study unit held by the local store. Content is an opaque
// payload (word, definition, media references); the sync engine never
// inspects it.
type Flashcard struct {
	ID        string          `json:"id"`
	Content   json.RawMessage `json:"content"`
	UpdatedAt int64           `json:"updated_at"` // unix milliseconds
	Deleted   bool            `json:"deleted"`
	SyncState SyncState       `json:"sync_state"`
}

// NewerThan reports whether this card's modification wins over other under
// last-writer-wins. Ties lose: a remote record with an equal timestamp
// supersedes a local pending mutation.
func (c *Flashcard) NewerThan(other *Flashcard) bool {
	return c.UpdatedAt > other.UpdatedAt
}

// Clone returns a deep copy of the card.
func (c *Flashcard) Clone() *Flashcard {
	content := make(json.RawMessage, len(c.Content))
	copy(content, c.Content)

	return &Flashcard{
		ID:        c.ID,
		Content:   content,
		UpdatedAt: c.UpdatedAt,
		Deleted:   c.Deleted,
		SyncState: c.SyncState,
	}
}
