// Package loader hydrates an empty local store from the remote collection
// without blocking the caller for the full dataset: a small first page makes
// the application usable, the remainder streams in the background.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	httpClient "github.com/nkarpov/flashsync/internal/client/api"
	"github.com/nkarpov/flashsync/internal/client/events"
	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
	"github.com/nkarpov/flashsync/pkg/api"
)

const (
	// DefaultFirstPageSize is how many records the first page fetches
	// before the application is declared usable.
	DefaultFirstPageSize = 10

	// DefaultBatchSize is the page and write-batch size for background
	// hydration. Batches keep write amplification down when persisting
	// hundreds of records.
	DefaultBatchSize = 50
)

// Loader performs progressive hydration of an empty local store.
type Loader struct {
	apiClient     httpClient.ClientAPI
	cards         storage.CardStorage
	cursorStore   storage.CursorStorage
	events        *events.Bus
	logger        *slog.Logger
	firstPageSize int
	batchSize     int
	wg            sync.WaitGroup
}

// NewLoader creates a progressive loader with default page sizes
func NewLoader(apiClient httpClient.ClientAPI, cards storage.CardStorage, cursorStore storage.CursorStorage, bus *events.Bus, logger *slog.Logger) *Loader {
	return &Loader{
		apiClient:     apiClient,
		cards:         cards,
		cursorStore:   cursorStore,
		events:        bus,
		logger:        logger,
		firstPageSize: DefaultFirstPageSize,
		batchSize:     DefaultBatchSize,
	}
}

// SetPageSizes overrides the first-page and background batch sizes.
// Used by tests and by callers tuning for small collections.
func (l *Loader) SetPageSizes(firstPage, batch int) {
	if firstPage > 0 {
		l.firstPageSize = firstPage
	}
	if batch > 0 {
		l.batchSize = batch
	}
}

// Hydrate populates an empty local store. It returns once the first page is
// persisted and first-page-ready has fired; the rest of the collection
// continues loading in the background. A non-empty store is a no-op.
func (l *Loader) Hydrate(ctx context.Context) error {
	count, err := l.cards.CountCards(ctx)
	if err != nil {
		return fmt.Errorf("failed to count local cards: %w", err)
	}
	if count > 0 {
		l.logger.Debug("Local store not empty, skipping hydration", "count", count)
		return nil
	}

	// The first page decides whether the app is usable at all, so it is
	// retried with backoff instead of surfacing a blank screen.
	var page *api.CollectionPage
	backoff := retry.WithMaxRetries(4, retry.WithJitter(250*time.Millisecond,
		retry.WithCappedDuration(10*time.Second, retry.NewExponential(500*time.Millisecond))))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := l.apiClient.ListCards(ctx, 0, l.firstPageSize)
		if err != nil {
			if httpClient.IsTransient(err) {
				l.logger.Warn("First page fetch failed, retrying", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return fmt.Errorf("first page fetch failed: %w", err)
	}

	cards, maxUpdated := cardsFromAPI(page.Cards)
	if err := l.cards.PutCards(ctx, cards); err != nil {
		return fmt.Errorf("failed to persist first page: %w", err)
	}

	l.logger.Info("First page ready", "count", len(cards), "total", page.Total)
	l.events.PublishFirstPageReady(len(cards))

	if page.Total <= len(cards) {
		// Collection smaller than the first page: hydration is already done
		l.advanceCursor(ctx, maxUpdated)
		l.events.PublishHydrationComplete(len(cards))
		return nil
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.hydrateRemainder(ctx, len(cards), maxUpdated)
	}()

	return nil
}

// Wait blocks until background hydration finishes. Used on shutdown and in
// tests; callers serving a UI never need it.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// hydrateRemainder pages the rest of the collection into the local store.
// Failures here are logged and left for the next sync cycle: the app is
// already usable. Pages arrive in id order, so the pull boundary advances
// only once the whole collection is local; a partial hydration leaves it
// alone and the next reconciliation pass pulls what is missing.
func (l *Loader) hydrateRemainder(ctx context.Context, loaded int, maxUpdated int64) {
	offset := loaded

	for {
		if ctx.Err() != nil {
			l.logger.Info("Hydration cancelled", "loaded", loaded)
			return
		}

		page, err := l.apiClient.ListCards(ctx, offset, l.batchSize)
		if err != nil {
			l.logger.Warn("Background page fetch failed, deferring to next sync cycle",
				"offset", offset, "error", err)
			return
		}
		if len(page.Cards) == 0 {
			break
		}

		cards, batchMax := cardsFromAPI(page.Cards)
		if err := l.cards.PutCards(ctx, cards); err != nil {
			if errors.Is(err, storage.ErrStorageFull) {
				l.logger.Warn("Local storage full, pausing hydration", "loaded", loaded)
				return
			}
			l.logger.Warn("Failed to persist hydration batch", "offset", offset, "error", err)
			return
		}

		if batchMax > maxUpdated {
			maxUpdated = batchMax
		}

		loaded += len(cards)
		offset += len(cards)

		if loaded >= page.Total {
			break
		}
	}

	l.advanceCursor(ctx, maxUpdated)

	l.logger.Info("Hydration complete", "total", loaded)
	l.events.PublishHydrationComplete(loaded)
}

// advanceCursor moves the pull boundary forward, never backward
func (l *Loader) advanceCursor(ctx context.Context, maxUpdated int64) {
	cursor, err := l.cursorStore.GetCursor(ctx)
	if err != nil {
		l.logger.Warn("Failed to load sync cursor", "error", err)
		return
	}
	if maxUpdated <= cursor.LastPulledAt {
		return
	}
	cursor.LastPulledAt = maxUpdated
	if err := l.cursorStore.SaveCursor(ctx, cursor); err != nil {
		l.logger.Warn("Failed to save sync cursor", "error", err)
	}
}

// cardsFromAPI converts wire cards to synced local records and reports the
// highest updated_at seen.
func cardsFromAPI(in []api.Card) ([]*models.Flashcard, int64) {
	cards := make([]*models.Flashcard, 0, len(in))
	var maxUpdated int64
	for _, c := range in {
		cards = append(cards, &models.Flashcard{
			ID:        c.ID,
			Content:   c.Content,
			UpdatedAt: c.UpdatedAt,
			Deleted:   c.Deleted,
			SyncState: models.SyncStateSynced,
		})
		if c.UpdatedAt > maxUpdated {
			maxUpdated = c.UpdatedAt
		}
	}
	return cards, maxUpdated
}
