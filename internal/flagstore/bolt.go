package flagstore

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

// flagsBucket holds one key per flagged path.
const flagsBucket = "flags"

// BoltStore keeps flags in a bbolt bucket keyed by absolute path.
// bbolt holds an exclusive file lock, so only one process can open it.
type BoltStore struct {
	db *bbolt.DB
}

// Ensure BoltStore implements Store interface.
var _ Store = (*BoltStore)(nil)

// NewBoltStore opens or creates the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeStoreOpen, "failed to open flag database", err).
			WithDetail("path", path).
			WithSuggestion("Another dropignore process may hold the database")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(flagsBucket)); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, derrors.New(derrors.ErrCodeStoreOpen, "failed to initialize database", err).
			WithDetail("path", path)
	}

	return &BoltStore{db: db}, nil
}

// Set records the flag for path.
func (b *BoltStore) Set(_ context.Context, path string) error {
	if err := requireExists("set", path); err != nil {
		return err
	}
	k, err := key(path)
	if err != nil {
		return derrors.FlagStoreError("set", path, err)
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(flagsBucket)).Put([]byte(k), []byte(flagValue))
	})
	if err != nil {
		return derrors.FlagStoreError("set", path, err)
	}
	return nil
}

// Clear deletes the flag for path. Deleting a missing key is not an error.
func (b *BoltStore) Clear(_ context.Context, path string) error {
	k, err := key(path)
	if err != nil {
		return derrors.FlagStoreError("clear", path, err)
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(flagsBucket)).Delete([]byte(k))
	})
	if err != nil {
		return derrors.FlagStoreError("clear", path, err)
	}
	return nil
}

// Query reports whether path has a flag key.
func (b *BoltStore) Query(_ context.Context, path string) (bool, error) {
	k, err := key(path)
	if err != nil {
		return false, derrors.FlagStoreError("query", path, err)
	}

	var found bool
	err = b.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(flagsBucket)).Get([]byte(k)) != nil
		return nil
	})
	if err != nil {
		return false, derrors.FlagStoreError("query", path, err)
	}
	return found, nil
}

// Close closes the database and releases its file lock.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
