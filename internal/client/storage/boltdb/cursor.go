package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/nkarpov/flashsync/internal/client/storage"
	"github.com/nkarpov/flashsync/internal/models"
)

// keySyncCursor is the meta bucket key holding the persisted sync cursor
var keySyncCursor = []byte("sync_cursor")

// SaveCursor persists the sync cursor
func (s *Storage) SaveCursor(ctx context.Context, cursor *models.SyncCursor) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(cursor)
	if err != nil {
		return fmt.Errorf("failed to marshal cursor: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return bucket.Put(keySyncCursor, data)
	})

	if err != nil {
		return fmt.Errorf("cursor transaction failed: %w", err)
	}

	return nil
}

// GetCursor retrieves the sync cursor. A zero cursor is returned when no
// sync has completed yet.
func (s *Storage) GetCursor(ctx context.Context) (*models.SyncCursor, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	cursor := &models.SyncCursor{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return nil
		}

		data := bucket.Get(keySyncCursor)
		if data == nil {
			return nil
		}

		if err := json.Unmarshal(data, cursor); err != nil {
			return fmt.Errorf("failed to unmarshal cursor: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return cursor, nil
}
