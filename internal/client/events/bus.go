// Package events delivers engine lifecycle notifications to the UI layer:
// first-page-ready and hydration-complete during progressive loading, and
// sync-state-changed whenever a card's relation to the remote collection
// moves. Subscriptions are callbacks, not polling.
package events

import (
	"sync"

	"github.com/nkarpov/flashsync/internal/models"
)

// Bus fans lifecycle events out to registered handlers. Handlers run on
// the publishing goroutine, so they must be cheap and must not block.
type Bus struct {
	mu sync.RWMutex

	firstPage []func(count int)
	hydration []func(total int)
	syncState []func(cardID string, state models.SyncState)
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// OnFirstPageReady registers a handler fired once the first page of a
// hydration is locally available. count is the number of ready records.
func (b *Bus) OnFirstPageReady(fn func(count int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.firstPage = append(b.firstPage, fn)
}

// OnHydrationComplete registers a handler fired when background hydration
// finishes. total is the number of locally available records.
func (b *Bus) OnHydrationComplete(fn func(total int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hydration = append(b.hydration, fn)
}

// OnSyncStateChanged registers a handler fired whenever a card's sync
// state transitions.
func (b *Bus) OnSyncStateChanged(fn func(cardID string, state models.SyncState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncState = append(b.syncState, fn)
}

// PublishFirstPageReady notifies first-page-ready handlers
func (b *Bus) PublishFirstPageReady(count int) {
	b.mu.RLock()
	handlers := b.firstPage
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(count)
	}
}

// PublishHydrationComplete notifies hydration-complete handlers
func (b *Bus) PublishHydrationComplete(total int) {
	b.mu.RLock()
	handlers := b.hydration
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(total)
	}
}

// PublishSyncStateChanged notifies sync-state-changed handlers
func (b *Bus) PublishSyncStateChanged(cardID string, state models.SyncState) {
	b.mu.RLock()
	handlers := b.syncState
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(cardID, state)
	}
}
