package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkarpov/flashsync/internal/models"
)

func TestStorage_Cursor_ZeroWhenUnset(t *testing.T) {
	store := createTestStorage(t)

	cursor, err := store.GetCursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.SyncCursor{}, cursor)
}

func TestStorage_Cursor_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cursor := &models.SyncCursor{
		LastPulledAt: 12345,
		SyncEpoch:    7,
		LastSyncedAt: 99999,
	}
	require.NoError(t, store.SaveCursor(ctx, cursor))

	got, err := store.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, cursor, got)
}
