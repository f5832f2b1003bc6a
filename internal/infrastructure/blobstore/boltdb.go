package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

// Store persists string blobs in a single BoltDB bucket. It backs the
// repository.BlobStore contract with a local file so the board survives
// restarts without any external service.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "blobs"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrCodeStorage, "failed to create storage directory", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeStorage, "failed to open storage file", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, domain.WrapError(domain.ErrCodeStorage, "failed to create storage bucket", err)
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Get returns the blob stored under key, reporting absence without error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, domain.NewError(domain.ErrCodeStorage, "storage is not open")
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, domain.WrapError(domain.ErrCodeStorage, "storage read failed", err)
	}
	if value == nil {
		return "", false, nil
	}
	return string(value), true, nil
}

// Set writes the blob under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s == nil || s.db == nil {
		return domain.NewError(domain.ErrCodeStorage, "storage is not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "storage write failed", err)
	}
	return nil
}

// Clear removes every blob in the bucket.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return domain.NewError(domain.ErrCodeStorage, "storage is not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "storage clear failed", err)
	}
	return nil
}

// Size returns the number of stored blobs, for health reporting.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, domain.NewError(domain.ErrCodeStorage, "storage is not open")
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
