package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
)

// seqKey encodes a sequence number as a big-endian key, so bucket cursor
// order equals creation order.
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Enqueue appends a mutation entry and returns its sequence number
func (s *Storage) Enqueue(ctx context.Context, entry *models.MutationEntry) (uint64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	if err := s.checkQuota(); err != nil {
		return 0, err
	}

	var seq uint64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketMutations)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		seq, err = bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		entry.Seq = seq

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		if err := bucket.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("enqueue transaction failed: %w", err)
	}

	return seq, nil
}

// PendingEntries returns all queued entries in FIFO order
func (s *Storage) PendingEntries(ctx context.Context) ([]*models.MutationEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.MutationEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMutations)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var entry models.MutationEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
			entries = append(entries, &entry)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}

	return entries, nil
}

// Ack removes an acknowledged entry from the queue
func (s *Storage) Ack(ctx context.Context, seq uint64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMutations)
		if bucket == nil {
			return storage.ErrEntryNotFound
		}

		key := seqKey(seq)
		if bucket.Get(key) == nil {
			return storage.ErrEntryNotFound
		}

		return bucket.Delete(key)
	})

	if err != nil {
		return err
	}

	return nil
}

// UpdateEntry rewrites an existing entry in place
func (s *Storage) UpdateEntry(ctx context.Context, entry *models.MutationEntry) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMutations)
		if bucket == nil {
			return storage.ErrEntryNotFound
		}

		key := seqKey(entry.Seq)
		if bucket.Get(key) == nil {
			return storage.ErrEntryNotFound
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		return bucket.Put(key, data)
	})

	if err != nil {
		return err
	}

	return nil
}

// DropCard removes every queued entry for the given card id
func (s *Storage) DropCard(ctx context.Context, cardID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMutations)
		if bucket == nil {
			return nil
		}

		var keys [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var entry models.MutationEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
			if entry.CardID == cardID {
				key := make([]byte, len(k))
				copy(key, k)
				keys = append(keys, key)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, key := range keys {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete entry: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("drop transaction failed: %w", err)
	}

	return nil
}

// PendingCount returns the number of queued entries
func (s *Storage) PendingCount(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMutations)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to count pending entries: %w", err)
	}

	return count, nil
}
