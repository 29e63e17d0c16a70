package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
)

// ApplyMutation stores the card state and its queue entry in a single
// transaction. A failure, quota included, leaves neither behind: a card in
// a pending state always has the queue entry that will push it.
func (s *Storage) ApplyMutation(ctx context.Context, card *models.Flashcard, entry *models.MutationEntry) (uint64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	if err := s.checkQuota(); err != nil {
		return 0, err
	}

	var seq uint64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		cards, err := tx.CreateBucketIfNotExists(bucketCards)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		cardData, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to marshal card %s: %w", card.ID, err)
		}
		if err := cards.Put([]byte(card.ID), cardData); err != nil {
			return fmt.Errorf("failed to save card %s: %w", card.ID, err)
		}

		mutations, err := tx.CreateBucketIfNotExists(bucketMutations)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		seq, err = mutations.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		entry.Seq = seq

		entryData, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		if err := mutations.Put(seqKey(seq), entryData); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("mutation transaction failed: %w", err)
	}

	return seq, nil
}
