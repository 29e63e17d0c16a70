package storage

import (
	"context"

	"github.com/nkarpov/flashsync/internal/models"
)

// CardStorage defines the interface for the local flashcard table.
// Reads are always served from here, never from the network.
type CardStorage interface {
	// GetCard retrieves a card by id.
	// Returns ErrCardNotFound if the card doesn't exist.
	GetCard(ctx context.Context, id string) (*models.Flashcard, error)

	// ListCards returns all cards, including tombstones.
	// Used by sync operations.
	ListCards(ctx context.Context) ([]*models.Flashcard, error)

	// ListActiveCards returns all non-deleted cards.
	ListActiveCards(ctx context.Context) ([]*models.Flashcard, error)

	// PutCard stores or overwrites a card by id.
	PutCard(ctx context.Context, card *models.Flashcard) error

	// PutCards stores a batch of cards in a single transaction.
	// Either every card of the batch becomes visible or none does.
	PutCards(ctx context.Context, cards []*models.Flashcard) error

	// DeleteCard physically removes a card.
	// Tombstoning is done via PutCard with Deleted set; physical removal
	// happens only after a delete is acknowledged remotely.
	DeleteCard(ctx context.Context, id string) error

	// CountCards returns the number of stored cards, including tombstones.
	// Used to detect an empty store before hydration.
	CountCards(ctx context.Context) (int, error)
}
