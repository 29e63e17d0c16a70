package boltdb

import (
	"context"
	"fmt"
	"os"

	"go.etcd.io/bbolt"

	"github.com/nkarpov/flashsync/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketCards     = []byte("cards")
	bucketMutations = []byte("mutations")
	bucketMeta      = []byte("meta")
)

// Storage represents BoltDB storage implementation for the client.
// It owns the on-disk flashcard table, the mutation queue and the sync
// cursor record.
type Storage struct {
	db    *bbolt.DB
	quota int64 // max database file size in bytes, 0 = unlimited
}

// New creates a new BoltDB storage instance.
// dbPath is the path to the BoltDB database file.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// SetQuota bounds the database file size. Writes past the quota fail with
// storage.ErrStorageFull; reads keep working.
func (s *Storage) SetQuota(bytes int64) {
	s.quota = bytes
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets creates the required buckets if they don't exist yet
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCards, bucketMutations, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// checkQuota returns storage.ErrStorageFull when the database file has
// grown past the configured quota.
func (s *Storage) checkQuota() error {
	if s.quota <= 0 {
		return nil
	}

	info, err := os.Stat(s.db.Path())
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	if info.Size() >= s.quota {
		return storage.ErrStorageFull
	}

	return nil
}
