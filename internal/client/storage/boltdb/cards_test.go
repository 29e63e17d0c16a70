package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
)

func TestStorage_PutCard_GetCard(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	card := createTestCard("card-1", 100, models.SyncStateSynced)
	require.NoError(t, store.PutCard(ctx, card))

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, card, got)

	// Upsert overwrites by id
	card.UpdatedAt = 200
	card.SyncState = models.SyncStatePendingUpdate
	require.NoError(t, store.PutCard(ctx, card))

	got, err = store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.UpdatedAt)
	assert.Equal(t, models.SyncStatePendingUpdate, got.SyncState)
}

func TestStorage_GetCard_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetCard(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrCardNotFound)
}

func TestStorage_PutCards_Batch(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	batch := []*models.Flashcard{
		createTestCard("card-1", 100, models.SyncStateSynced),
		createTestCard("card-2", 200, models.SyncStateSynced),
		createTestCard("card-3", 300, models.SyncStateSynced),
	}
	require.NoError(t, store.PutCards(ctx, batch))

	count, err := store.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Empty batch is a no-op
	require.NoError(t, store.PutCards(ctx, nil))
}

func TestStorage_ListCards_FiltersTombstones(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	active := createTestCard("card-1", 100, models.SyncStateSynced)
	tombstone := createTestCard("card-2", 200, models.SyncStatePendingDelete)
	tombstone.Deleted = true
	require.NoError(t, store.PutCards(ctx, []*models.Flashcard{active, tombstone}))

	all, err := store.ListCards(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := store.ListActiveCards(ctx)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, "card-1", activeOnly[0].ID)
}

func TestStorage_DeleteCard(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.PutCard(ctx, createTestCard("card-1", 100, models.SyncStateSynced)))
	require.NoError(t, store.DeleteCard(ctx, "card-1"))

	_, err := store.GetCard(ctx, "card-1")
	assert.ErrorIs(t, err, storage.ErrCardNotFound)

	assert.ErrorIs(t, store.DeleteCard(ctx, "card-1"), storage.ErrCardNotFound)
}

func TestStorage_Quota(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.PutCard(ctx, createTestCard("card-1", 100, models.SyncStateSynced)))

	// A quota of one byte is always exceeded by the existing database file
	store.SetQuota(1)

	err := store.PutCard(ctx, createTestCard("card-2", 200, models.SyncStateSynced))
	assert.ErrorIs(t, err, storage.ErrStorageFull)

	_, err = store.Enqueue(ctx, &models.MutationEntry{CardID: "card-1", Op: models.OpUpdate})
	assert.ErrorIs(t, err, storage.ErrStorageFull)

	// Reads keep working while the store is full
	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, "card-1", got.ID)
}

func TestStorage_Closed(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Close())
	store.db = nil

	_, err := store.GetCard(context.Background(), "card-1")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = store.PutCard(context.Background(), createTestCard("card-1", 100, models.SyncStateSynced))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
