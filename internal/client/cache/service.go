// Package cache is the UI-facing read/write path. Reads are synchronous
// and come exclusively from the local store; writes apply locally, queue a
// mutation for the sync orchestrator and return immediately. The network is
// never on the caller's critical path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nkarpov/flashsync/internal/client/events"
	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
	"github.com/nkarpov/flashsync/pkg/api"
)

// Service defines the cache-first read/write interface exposed to the UI
type Service interface {
	// Read returns a card from the local store. Never touches the network.
	Read(ctx context.Context, id string) (*models.Flashcard, error)

	// ReadAll returns all non-deleted cards from the local store, newest
	// first. Never touches the network.
	ReadAll(ctx context.Context) ([]*models.Flashcard, error)

	// Create stores a new card locally and queues its creation.
	Create(ctx context.Context, content json.RawMessage) (*models.Flashcard, error)

	// Update overwrites a card's content locally and queues the update.
	Update(ctx context.Context, id string, content json.RawMessage) (*models.Flashcard, error)

	// Delete tombstones a card locally and queues the deletion.
	Delete(ctx context.Context, id string) error

	// Refresh nudges a non-blocking background reconciliation.
	Refresh(ctx context.Context)
}

type service struct {
	cards     storage.CardStorage
	mutations storage.MutationStorage
	events    *events.Bus
	refresh   func(ctx context.Context) // background sync trigger, may be nil
	now       func() time.Time
}

// NewService creates the cache-first service. refresh is invoked after
// every local mutation and by Refresh; pass the sync orchestrator's Trigger.
func NewService(cards storage.CardStorage, mutations storage.MutationStorage, bus *events.Bus, refresh func(ctx context.Context)) Service {
	return &service{
		cards:     cards,
		mutations: mutations,
		events:    bus,
		refresh:   refresh,
		now:       time.Now,
	}
}

// Read returns a card from the local store
func (s *service) Read(ctx context.Context, id string) (*models.Flashcard, error) {
	card, err := s.cards.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.Deleted {
		return nil, storage.ErrCardNotFound
	}
	return card, nil
}

// ReadAll returns all non-deleted cards, newest first
func (s *service) ReadAll(ctx context.Context) ([]*models.Flashcard, error) {
	cards, err := s.cards.ListActiveCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].UpdatedAt != cards[j].UpdatedAt {
			return cards[i].UpdatedAt > cards[j].UpdatedAt
		}
		return cards[i].ID < cards[j].ID
	})

	return cards, nil
}

// Create stores a new card locally and queues its creation
func (s *service) Create(ctx context.Context, content json.RawMessage) (*models.Flashcard, error) {
	card := &models.Flashcard{
		ID:        uuid.New().String(),
		Content:   content,
		UpdatedAt: s.now().UnixMilli(),
		SyncState: models.SyncStatePendingCreate,
	}

	if err := s.applyAndEnqueue(ctx, card, models.OpCreate); err != nil {
		return nil, err
	}

	return card, nil
}

// Update overwrites a card's content locally and queues the update
func (s *service) Update(ctx context.Context, id string, content json.RawMessage) (*models.Flashcard, error) {
	card, err := s.cards.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.Deleted {
		return nil, storage.ErrCardNotFound
	}

	card.Content = content
	card.UpdatedAt = s.now().UnixMilli()

	op := models.OpUpdate
	if card.SyncState == models.SyncStatePendingCreate {
		// The create has not been acknowledged yet; the queued create and
		// this update replay in order, so the pending state stays create.
		card.SyncState = models.SyncStatePendingCreate
	} else {
		card.SyncState = models.SyncStatePendingUpdate
	}

	if err := s.applyAndEnqueue(ctx, card, op); err != nil {
		return nil, err
	}

	return card, nil
}

// Delete tombstones a card locally and queues the deletion. The tombstone
// stays until the gateway acknowledges the delete.
func (s *service) Delete(ctx context.Context, id string) error {
	card, err := s.cards.GetCard(ctx, id)
	if err != nil {
		return err
	}

	card.Deleted = true
	card.UpdatedAt = s.now().UnixMilli()
	card.SyncState = models.SyncStatePendingDelete

	return s.applyAndEnqueue(ctx, card, models.OpDelete)
}

// Refresh nudges a non-blocking background reconciliation
func (s *service) Refresh(ctx context.Context) {
	if s.refresh != nil {
		s.refresh(ctx)
	}
}

// applyAndEnqueue persists the card state and its mutation snapshot in one
// transaction, then nudges a background sync. Atomicity matters at the
// storage quota boundary: a pending card without its queue entry would
// never push.
func (s *service) applyAndEnqueue(ctx context.Context, card *models.Flashcard, op models.Operation) error {
	payload, err := json.Marshal(api.Card{
		ID:        card.ID,
		Content:   card.Content,
		UpdatedAt: card.UpdatedAt,
		Deleted:   card.Deleted,
	})
	if err != nil {
		return fmt.Errorf("failed to snapshot mutation: %w", err)
	}

	entry := &models.MutationEntry{
		CardID:    card.ID,
		Op:        op,
		Payload:   payload,
		CreatedAt: card.UpdatedAt,
	}
	if _, err := s.mutations.ApplyMutation(ctx, card, entry); err != nil {
		return fmt.Errorf("failed to apply local mutation: %w", err)
	}

	s.events.PublishSyncStateChanged(card.ID, card.SyncState)
	s.Refresh(ctx)

	return nil
}
