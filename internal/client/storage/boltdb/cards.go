package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
)

// GetCard retrieves a card by id
func (s *Storage) GetCard(ctx context.Context, id string) (*models.Flashcard, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var card *models.Flashcard

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCards)
		if bucket == nil {
			return storage.ErrCardNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrCardNotFound
		}

		card = &models.Flashcard{}
		if err := json.Unmarshal(data, card); err != nil {
			return fmt.Errorf("failed to unmarshal card: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return card, nil
}

// ListCards returns all cards, including tombstones
func (s *Storage) ListCards(ctx context.Context) ([]*models.Flashcard, error) {
	return s.listCards(func(*models.Flashcard) bool { return true })
}

// ListActiveCards returns all non-deleted cards
func (s *Storage) ListActiveCards(ctx context.Context) ([]*models.Flashcard, error) {
	return s.listCards(func(c *models.Flashcard) bool { return !c.Deleted })
}

func (s *Storage) listCards(keep func(*models.Flashcard) bool) ([]*models.Flashcard, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var cards []*models.Flashcard

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCards)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var card models.Flashcard
			if err := json.Unmarshal(v, &card); err != nil {
				return fmt.Errorf("failed to unmarshal card: %w", err)
			}
			if keep(&card) {
				cards = append(cards, &card)
			}
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	return cards, nil
}

// PutCard stores or overwrites a card by id
func (s *Storage) PutCard(ctx context.Context, card *models.Flashcard) error {
	return s.PutCards(ctx, []*models.Flashcard{card})
}

// PutCards stores a batch of cards in a single transaction. Concurrent
// readers observe either none or all of the batch.
func (s *Storage) PutCards(ctx context.Context, cards []*models.Flashcard) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	if err := s.checkQuota(); err != nil {
		return err
	}

	if len(cards) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketCards)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		for _, card := range cards {
			data, err := json.Marshal(card)
			if err != nil {
				return fmt.Errorf("failed to marshal card %s: %w", card.ID, err)
			}
			if err := bucket.Put([]byte(card.ID), data); err != nil {
				return fmt.Errorf("failed to save card %s: %w", card.ID, err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// DeleteCard physically removes a card
func (s *Storage) DeleteCard(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCards)
		if bucket == nil {
			return storage.ErrCardNotFound
		}

		if bucket.Get([]byte(id)) == nil {
			return storage.ErrCardNotFound
		}

		return bucket.Delete([]byte(id))
	})

	if err != nil {
		return err
	}

	return nil
}

// CountCards returns the number of stored cards, including tombstones
func (s *Storage) CountCards(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCards)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}

	return count, nil
}
