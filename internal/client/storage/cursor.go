package storage

import (
	"context"

	"github.com/nkarpov/flashsync/internal/models"
)

// CursorStorage defines the interface for the persisted sync cursor.
type CursorStorage interface {
	// SaveCursor persists the cursor.
	SaveCursor(ctx context.Context, cursor *models.SyncCursor) error

	// GetCursor retrieves the cursor.
	// Returns a zero cursor if no sync has completed yet.
	GetCursor(ctx context.Context) (*models.SyncCursor, error)
}
