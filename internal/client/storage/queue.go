package storage

import (
	"context"

	"github.com/nkarpov/flashsync/internal/models"
)

// QueueStorage defines the drain-side interface for the persisted mutation
// queue. Entries are appended through MutationStorage.ApplyMutation and
// disappear only on explicit acknowledgment. Sequence numbers are
// monotonically increasing, so iteration order is creation order.
type QueueStorage interface {
	// PendingEntries returns all queued entries in FIFO order.
	PendingEntries(ctx context.Context) ([]*models.MutationEntry, error)

	// Ack removes an entry after the gateway acknowledged its operation.
	// Returns ErrEntryNotFound if the entry was already removed.
	Ack(ctx context.Context, seq uint64) error

	// UpdateEntry rewrites an entry in place (attempt bookkeeping, parking).
	UpdateEntry(ctx context.Context, entry *models.MutationEntry) error

	// DropCard removes every queued entry for the given card id.
	// Used when conflict resolution discards a local pending mutation.
	DropCard(ctx context.Context, cardID string) error

	// PendingCount returns the number of queued entries.
	PendingCount(ctx context.Context) (int, error)
}

// MutationStorage applies a local mutation atomically: the card state and
// its queue entry commit together or not at all. A card must never exist in
// a pending state without the queue entry that will push it.
type MutationStorage interface {
	// ApplyMutation stores the card and appends its queue entry in a
	// single transaction, returning the entry's sequence number.
	ApplyMutation(ctx context.Context, card *models.Flashcard, entry *models.MutationEntry) (uint64, error)
}
