package storage

import (
	"context"

	"github.com/nkarpov/flashsync/internal/models"
)

// CardStore defines the interface for the authoritative collection store.
// Every operation is idempotent by card id.
type CardStore interface {
	// ListCards returns one page of the collection in stable id order,
	// tombstones included, plus the total record count.
	ListCards(ctx context.Context, offset, limit int) ([]*models.Flashcard, int, error)

	// GetCard retrieves a card by id.
	// Returns ErrCardNotFound if the card doesn't exist.
	GetCard(ctx context.Context, id string) (*models.Flashcard, error)

	// UpsertCard creates or overwrites a card by id.
	// Returns true when a record with the id already existed.
	UpsertCard(ctx context.Context, card *models.Flashcard) (bool, error)

	// DeleteCard tombstones a card with the given modification time.
	// Returns ErrCardNotFound if the card doesn't exist.
	DeleteCard(ctx context.Context, id string, updatedAt int64) error
}
