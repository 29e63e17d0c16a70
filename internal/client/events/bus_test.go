package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkarpov/flashsync/internal/models"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()

	var first, second int
	bus.OnFirstPageReady(func(count int) { first = count })
	bus.OnFirstPageReady(func(count int) { second = count })

	bus.PublishFirstPageReady(10)

	assert.Equal(t, 10, first)
	assert.Equal(t, 10, second)
}

func TestBus_HydrationComplete(t *testing.T) {
	bus := NewBus()

	var total int
	bus.OnHydrationComplete(func(n int) { total = n })

	bus.PublishHydrationComplete(25)

	assert.Equal(t, 25, total)
}

func TestBus_SyncStateChanged(t *testing.T) {
	bus := NewBus()

	var gotID string
	var gotState models.SyncState
	bus.OnSyncStateChanged(func(cardID string, state models.SyncState) {
		gotID = cardID
		gotState = state
	})

	bus.PublishSyncStateChanged("card-1", models.SyncStateSynced)

	assert.Equal(t, "card-1", gotID)
	assert.Equal(t, models.SyncStateSynced, gotState)
}

func TestBus_PublishWithoutHandlers(t *testing.T) {
	bus := NewBus()

	// No handlers registered: publishing is a no-op
	bus.PublishFirstPageReady(1)
	bus.PublishHydrationComplete(1)
	bus.PublishSyncStateChanged("card-1", models.SyncStateSynced)
}
