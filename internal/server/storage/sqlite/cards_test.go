package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkarpov/flashsync/internal/models"
	"github.com/nkarpov/flashsync/internal/server/storage"
)

func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func createTestCard(id string, updatedAt int64) *models.Flashcard {
	return &models.Flashcard{
		ID:        id,
		Content:   json.RawMessage(fmt.Sprintf(`{"word":"word-%s"}`, id)),
		UpdatedAt: updatedAt,
	}
}

func TestStorage_UpsertCard(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	existed, err := store.UpsertCard(ctx, createTestCard("card-1", 100))
	require.NoError(t, err)
	assert.False(t, existed)

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.UpdatedAt)
	assert.JSONEq(t, `{"word":"word-card-1"}`, string(got.Content))

	// A replayed create for the same id overwrites instead of failing
	existed, err = store.UpsertCard(ctx, createTestCard("card-1", 200))
	require.NoError(t, err)
	assert.True(t, existed)

	got, err = store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.UpdatedAt)
}

func TestStorage_UpsertCard_EmptyContent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.UpsertCard(ctx, &models.Flashcard{ID: "card-1", UpdatedAt: 100})
	require.NoError(t, err)

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(got.Content))
}

func TestStorage_GetCard_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetCard(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrCardNotFound)
}

func TestStorage_ListCards_Pagination(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.UpsertCard(ctx, createTestCard(fmt.Sprintf("card-%d", i), int64(100+i)))
		require.NoError(t, err)
	}

	cards, total, err := store.ListCards(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, cards, 2)
	assert.Equal(t, "card-0", cards[0].ID)
	assert.Equal(t, "card-1", cards[1].ID)

	cards, total, err = store.ListCards(ctx, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, cards, 1)
	assert.Equal(t, "card-4", cards[0].ID)

	cards, total, err = store.ListCards(ctx, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, cards)
}

func TestStorage_DeleteCard(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.UpsertCard(ctx, createTestCard("card-1", 100))
	require.NoError(t, err)

	require.NoError(t, store.DeleteCard(ctx, "card-1", 200))

	// Deletes tombstone the record so clients can observe them
	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Equal(t, int64(200), got.UpdatedAt)

	cards, total, err := store.ListCards(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, cards, 1)

	assert.ErrorIs(t, store.DeleteCard(ctx, "missing", 200), storage.ErrCardNotFound)
}
