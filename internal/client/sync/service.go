// Package sync reconciles the local store with the remote collection
// gateway. One reconciliation pass pulls remote changes, resolves conflicts
// against pending local mutations, then pushes the mutation queue. At most
// one pass runs at a time; triggers arriving mid-pass coalesce into a
// single follow-up pass.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	httpClient "github.com/nkarpov/flashsync/internal/client/api"
	"github.com/nkarpov/flashsync/internal/client/events"
	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
	"github.com/nkarpov/flashsync/pkg/api"
)

// State is the orchestrator's position in a reconciliation pass.
type State string

const (
	StateIdle       State = "idle"
	StatePulling    State = "pulling"
	StatePushing    State = "pushing"
	StateReconciled State = "reconciled"
)

// ErrPassInFlight is returned when Sync is called while a pass is already
// running. The caller's request is coalesced into a follow-up pass.
var ErrPassInFlight = errors.New("reconciliation pass already in flight")

const (
	// pullPageSize is the page size used when walking the remote collection
	pullPageSize = 100

	// backoffBase and backoffCap bound the per-entry push retry delay
	backoffBase = time.Second
	backoffCap  = 5 * time.Minute
)

// Service defines the sync orchestrator interface
type Service interface {
	// Sync runs one reconciliation pass (plus coalesced follow-ups) and
	// returns its result. Returns ErrPassInFlight if a pass is running.
	Sync(ctx context.Context) (*Result, error)

	// Trigger requests a pass without blocking. Requests during a running
	// pass coalesce into one follow-up pass.
	Trigger(ctx context.Context)

	// State returns the current pass state.
	State() State

	// PendingCount returns the number of queued local mutations.
	PendingCount(ctx context.Context) (int, error)

	// RetryCard clears the sync_error parking for a card so its queued
	// mutations push again on the next pass.
	RetryCard(ctx context.Context, cardID string) error
}

// Result contains the counters of one reconciliation pass
type Result struct {
	Pulled            int // remote records applied locally
	Pushed            int // queue entries acknowledged by the gateway
	Deferred          int // queue entries left for a later pass (transient failures, backoff)
	Parked            int // queue entries permanently rejected this pass
	ConflictsResolved int // pending local mutations discarded in favor of remote
	ConflictsKept     int // pending local mutations that outrank remote and stay queued
}

type service struct {
	apiClient   httpClient.ClientAPI
	cards       storage.CardStorage
	queue       storage.QueueStorage
	cursorStore storage.CursorStorage
	events      *events.Bus
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	state   State
	running bool
	rerun   bool
}

// NewService creates a new sync orchestrator
func NewService(apiClient httpClient.ClientAPI, cards storage.CardStorage, queue storage.QueueStorage, cursorStore storage.CursorStorage, bus *events.Bus, logger *slog.Logger) Service {
	return &service{
		apiClient:   apiClient,
		cards:       cards,
		queue:       queue,
		cursorStore: cursorStore,
		events:      bus,
		logger:      logger,
		now:         time.Now,
		state:       StateIdle,
	}
}

// State returns the current pass state
func (s *service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Trigger requests a pass without blocking the caller
func (s *service) Trigger(ctx context.Context) {
	go func() {
		if _, err := s.Sync(ctx); err != nil && !errors.Is(err, ErrPassInFlight) {
			s.logger.Warn("Background sync failed", "error", err)
		}
	}()
}

// Sync runs reconciliation passes until no coalesced trigger remains
func (s *service) Sync(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.running {
		s.rerun = true
		s.mu.Unlock()
		return nil, ErrPassInFlight
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.state = StateIdle
		s.mu.Unlock()
	}()

	total := &Result{}
	for {
		result, err := s.runPass(ctx)
		if err != nil {
			return nil, err
		}
		total.add(result)

		s.mu.Lock()
		again := s.rerun
		s.rerun = false
		s.mu.Unlock()
		if !again {
			break
		}
		s.logger.Debug("Running coalesced follow-up pass")
	}

	return total, nil
}

func (r *Result) add(other *Result) {
	r.Pulled += other.Pulled
	r.Pushed += other.Pushed
	r.Deferred += other.Deferred
	r.Parked += other.Parked
	r.ConflictsResolved += other.ConflictsResolved
	r.ConflictsKept += other.ConflictsKept
}

// runPass executes one pull+push cycle. Pull completes before push begins
// so a queued mutation is never pushed moments before a newer remote record
// would have conflict-resolved it away.
func (s *service) runPass(ctx context.Context) (*Result, error) {
	result := &Result{}

	s.setState(StatePulling)
	if err := s.pull(ctx, result); err != nil {
		return nil, fmt.Errorf("pull failed: %w", err)
	}

	if ctx.Err() != nil {
		// Cancellation between pull and push is safe: applied records are
		// persisted and the boundary only moves after a completed walk.
		return result, ctx.Err()
	}

	s.setState(StatePushing)
	if err := s.push(ctx, result); err != nil {
		return nil, fmt.Errorf("push failed: %w", err)
	}

	s.setState(StateReconciled)
	if err := s.finishPass(ctx); err != nil {
		s.logger.Warn("Failed to record pass completion", "error", err)
	}

	s.logger.Info("Reconciliation pass completed",
		"pulled", result.Pulled,
		"pushed", result.Pushed,
		"deferred", result.Deferred,
		"parked", result.Parked,
		"conflicts_resolved", result.ConflictsResolved,
		"conflicts_kept", result.ConflictsKept)

	return result, nil
}

// finishPass bumps the sync epoch and the last-synced wall clock
func (s *service) finishPass(ctx context.Context) error {
	cursor, err := s.cursorStore.GetCursor(ctx)
	if err != nil {
		return err
	}
	cursor.SyncEpoch++
	cursor.LastSyncedAt = s.now().UnixMilli()
	return s.cursorStore.SaveCursor(ctx, cursor)
}

// pull walks the remote collection and applies records newer than the
// cursor boundary. Records with a pending local mutation go through LWW
// conflict resolution instead of being blindly overwritten.
//
// The gateway pages in stable id order, not by updated_at, so the boundary
// advances only after the whole walk: saving it mid-walk would let an
// interrupted pass skip older records sitting on never-visited pages.
func (s *service) pull(ctx context.Context, result *Result) error {
	cursor, err := s.cursorStore.GetCursor(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cursor: %w", err)
	}
	boundary := cursor.LastPulledAt

	var maxUpdated int64

	// Lowest updated_at that failed to apply this walk. The boundary must
	// stay below it so the record replays on the next pass.
	failedFloor := int64(-1)

	offset := 0
	for {
		page, err := s.apiClient.ListCards(ctx, offset, pullPageSize)
		if err != nil {
			return fmt.Errorf("failed to list collection at offset %d: %w", offset, err)
		}
		if len(page.Cards) == 0 {
			break
		}

		batch := make([]*models.Flashcard, 0, len(page.Cards))

		for _, remote := range page.Cards {
			if remote.UpdatedAt > maxUpdated {
				maxUpdated = remote.UpdatedAt
			}
			if remote.UpdatedAt <= boundary {
				continue
			}

			card, resolved, err := s.applyRemote(ctx, remote, result)
			if err != nil {
				// One record's failure never aborts the pass for others
				s.logger.Warn("Failed to apply remote record", "card_id", remote.ID, "error", err)
				if failedFloor < 0 || remote.UpdatedAt < failedFloor {
					failedFloor = remote.UpdatedAt
				}
				continue
			}
			if card != nil {
				batch = append(batch, card)
			}
			if resolved {
				result.ConflictsResolved++
			}
		}

		if len(batch) > 0 {
			if err := s.cards.PutCards(ctx, batch); err != nil {
				if errors.Is(err, storage.ErrStorageFull) {
					// Not fatal: skip further pulls, keep serving reads,
					// continue to push so local changes still drain. The
					// boundary stays put so the skipped records replay.
					s.logger.Warn("Local storage full, skipping remaining pulls")
					return nil
				}
				return fmt.Errorf("failed to persist pulled batch: %w", err)
			}
			result.Pulled += len(batch)
		}

		offset += len(page.Cards)
		if offset >= page.Total {
			break
		}
	}

	newBoundary := maxUpdated
	if failedFloor >= 0 && failedFloor-1 < newBoundary {
		newBoundary = failedFloor - 1
	}
	if newBoundary > cursor.LastPulledAt {
		cursor.LastPulledAt = newBoundary
		if err := s.cursorStore.SaveCursor(ctx, cursor); err != nil {
			s.logger.Warn("Failed to save cursor", "error", err)
		}
	}

	return nil
}

// applyRemote decides what a pulled remote record does to the local store.
// It returns the card to persist (nil to skip) and whether a local pending
// mutation was discarded in remote's favor.
func (s *service) applyRemote(ctx context.Context, remote api.Card, result *Result) (*models.Flashcard, bool, error) {
	adopted := &models.Flashcard{
		ID:        remote.ID,
		Content:   remote.Content,
		UpdatedAt: remote.UpdatedAt,
		Deleted:   remote.Deleted,
		SyncState: models.SyncStateSynced,
	}

	local, err := s.cards.GetCard(ctx, remote.ID)
	if err != nil {
		if errors.Is(err, storage.ErrCardNotFound) {
			if remote.Deleted {
				// Tombstone for a record we never had: nothing to delete
				return nil, false, nil
			}
			return adopted, false, nil
		}
		return nil, false, err
	}

	if !local.SyncState.Pending() && local.SyncState != models.SyncStateError {
		if local.UpdatedAt == remote.UpdatedAt {
			return nil, false, nil
		}
		// No local pending change exists: remote wins
		return adopted, false, nil
	}

	// A local mutation is pending: last-writer-wins on updated_at, with
	// remote winning ties.
	if local.NewerThan(adopted) {
		s.logger.Debug("Keeping local pending mutation (newer)",
			"card_id", local.ID,
			"local_updated_at", local.UpdatedAt,
			"remote_updated_at", remote.UpdatedAt)
		result.ConflictsKept++
		return nil, false, nil
	}

	// Remote is newer or equal: discard the pending mutation, adopt remote
	if err := s.queue.DropCard(ctx, remote.ID); err != nil {
		return nil, false, fmt.Errorf("failed to drop queued mutations: %w", err)
	}

	s.logger.Info("Conflict resolved in remote's favor",
		"card_id", remote.ID,
		"local_updated_at", local.UpdatedAt,
		"remote_updated_at", remote.UpdatedAt)
	s.events.PublishSyncStateChanged(remote.ID, models.SyncStateSynced)

	return adopted, true, nil
}

// push drains the mutation queue in FIFO order. A single entity's history
// is never reordered; independent entities fail independently.
func (s *service) push(ctx context.Context, result *Result) error {
	entries, err := s.queue.PendingEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load queue: %w", err)
	}

	// Later entries for a card whose earlier entry did not go through this
	// pass must wait, otherwise the entity's operation history reorders.
	blocked := make(map[string]bool)

	// Remaining entry count per card, to know when a card is fully drained
	remaining := make(map[string]int)
	for _, entry := range entries {
		remaining[entry.CardID]++
	}

	nowMillis := s.now().UnixMilli()

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.Parked || blocked[entry.CardID] {
			blocked[entry.CardID] = true
			continue
		}

		if entry.NextAttemptAt > nowMillis {
			blocked[entry.CardID] = true
			result.Deferred++
			continue
		}

		if err := s.pushEntry(ctx, entry); err != nil {
			s.handlePushFailure(ctx, entry, err, result)
			blocked[entry.CardID] = true
			continue
		}

		if err := s.queue.Ack(ctx, entry.Seq); err != nil {
			return fmt.Errorf("failed to ack entry %d: %w", entry.Seq, err)
		}
		remaining[entry.CardID]--
		result.Pushed++

		if remaining[entry.CardID] == 0 {
			if err := s.markDrained(ctx, entry); err != nil {
				s.logger.Warn("Failed to finalize pushed card", "card_id", entry.CardID, "error", err)
			}
		}
	}

	return nil
}

// pushEntry replays one queued mutation against the gateway. Every
// operation is keyed by the card's stable id, so replays are safe.
func (s *service) pushEntry(ctx context.Context, entry *models.MutationEntry) error {
	var card api.Card
	if len(entry.Payload) > 0 {
		if err := json.Unmarshal(entry.Payload, &card); err != nil {
			return fmt.Errorf("failed to unmarshal payload snapshot: %w", err)
		}
	}
	card.ID = entry.CardID

	switch entry.Op {
	case models.OpCreate:
		err := s.apiClient.CreateCard(ctx, card)
		if httpClient.IsConflict(err) {
			// The id already exists remotely (e.g. an earlier replayed
			// create). Check freshness first: a strictly newer remote copy
			// wins under LWW, the mutation is acknowledged as lost and the
			// next pull adopts the remote record.
			remote, getErr := s.apiClient.GetCard(ctx, card.ID)
			if getErr == nil && remote.UpdatedAt > card.UpdatedAt {
				return nil
			}
			return s.apiClient.UpdateCard(ctx, card)
		}
		return err

	case models.OpUpdate:
		err := s.apiClient.UpdateCard(ctx, card)
		if httpClient.IsNotFound(err) {
			return s.apiClient.CreateCard(ctx, card)
		}
		return err

	case models.OpDelete:
		err := s.apiClient.DeleteCard(ctx, entry.CardID)
		if httpClient.IsNotFound(err) {
			// Already gone remotely: the delete is acknowledged
			return nil
		}
		return err

	default:
		return fmt.Errorf("unknown operation %q", entry.Op)
	}
}

// handlePushFailure classifies a push failure. Transient failures stay
// queued with exponential backoff; permanent rejections park the entry and
// flag the card for user-visible resolution.
func (s *service) handlePushFailure(ctx context.Context, entry *models.MutationEntry, pushErr error, result *Result) {
	if httpClient.IsPermanent(pushErr) {
		entry.Parked = true
		entry.LastError = pushErr.Error()
		if err := s.queue.UpdateEntry(ctx, entry); err != nil {
			s.logger.Warn("Failed to park entry", "seq", entry.Seq, "error", err)
		}
		s.flagCardError(ctx, entry.CardID)
		result.Parked++

		s.logger.Warn("Mutation permanently rejected",
			"card_id", entry.CardID,
			"op", entry.Op,
			"error", pushErr)
		return
	}

	entry.AttemptCount++
	entry.NextAttemptAt = s.now().UnixMilli() + backoffDelay(entry.AttemptCount).Milliseconds()
	if err := s.queue.UpdateEntry(ctx, entry); err != nil {
		s.logger.Warn("Failed to record push attempt", "seq", entry.Seq, "error", err)
	}
	result.Deferred++

	s.logger.Warn("Mutation push deferred",
		"card_id", entry.CardID,
		"op", entry.Op,
		"attempts", entry.AttemptCount,
		"error", pushErr)
}

// markDrained finalizes a card once its queue entries are fully
// acknowledged: deletes are physically removed, everything else flips to
// synced.
func (s *service) markDrained(ctx context.Context, entry *models.MutationEntry) error {
	if entry.Op == models.OpDelete {
		if err := s.cards.DeleteCard(ctx, entry.CardID); err != nil && !errors.Is(err, storage.ErrCardNotFound) {
			return err
		}
		s.events.PublishSyncStateChanged(entry.CardID, models.SyncStateSynced)
		return nil
	}

	card, err := s.cards.GetCard(ctx, entry.CardID)
	if err != nil {
		return err
	}
	if card.SyncState == models.SyncStateSynced {
		return nil
	}
	card.SyncState = models.SyncStateSynced
	if err := s.cards.PutCard(ctx, card); err != nil {
		return err
	}
	s.events.PublishSyncStateChanged(entry.CardID, models.SyncStateSynced)
	return nil
}

// flagCardError marks a card as needing user resolution
func (s *service) flagCardError(ctx context.Context, cardID string) {
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		s.logger.Warn("Failed to load card for error flag", "card_id", cardID, "error", err)
		return
	}
	card.SyncState = models.SyncStateError
	if err := s.cards.PutCard(ctx, card); err != nil {
		s.logger.Warn("Failed to flag card error", "card_id", cardID, "error", err)
		return
	}
	s.events.PublishSyncStateChanged(cardID, models.SyncStateError)
}

// PendingCount returns the number of queued local mutations
func (s *service) PendingCount(ctx context.Context) (int, error) {
	return s.queue.PendingCount(ctx)
}

// RetryCard clears parking for a card's queued mutations
func (s *service) RetryCard(ctx context.Context, cardID string) error {
	entries, err := s.queue.PendingEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load queue: %w", err)
	}

	var found bool
	var lastOp models.Operation
	for _, entry := range entries {
		if entry.CardID != cardID {
			continue
		}
		found = true
		lastOp = entry.Op
		if !entry.Parked {
			continue
		}
		entry.Parked = false
		entry.AttemptCount = 0
		entry.NextAttemptAt = 0
		entry.LastError = ""
		if err := s.queue.UpdateEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to unpark entry %d: %w", entry.Seq, err)
		}
	}
	if !found {
		return storage.ErrEntryNotFound
	}

	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return err
	}
	card.SyncState = pendingStateFor(lastOp)
	if err := s.cards.PutCard(ctx, card); err != nil {
		return err
	}
	s.events.PublishSyncStateChanged(cardID, card.SyncState)

	return nil
}

func pendingStateFor(op models.Operation) models.SyncState {
	switch op {
	case models.OpCreate:
		return models.SyncStatePendingCreate
	case models.OpDelete:
		return models.SyncStatePendingDelete
	default:
		return models.SyncStatePendingUpdate
	}
}

// backoffDelay grows base-2 per attempt, capped, with up to 25% jitter
func backoffDelay(attempts int) time.Duration {
	delay := backoffBase
	for i := 1; i < attempts && delay < backoffCap; i++ {
		delay *= 2
	}
	if delay > backoffCap {
		delay = backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(delay) / 4))
	return delay + jitter
}
