// Package badger implements db.Store on an embedded BadgerDB for single-node
// deployments that run without Redis.
package badger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pathwise-edu/pathwise/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const maxConflictRetries = 8

// Config holds BadgerDB options. An empty Dir opens an in-memory database.
type Config struct {
	Dir string
}

// Store implements db.Store on BadgerDB.
type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) a BadgerDB at cfg.Dir.
func NewStore(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Ping reports whether the database is still open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: an opened embedded database is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// Set stores a value without expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists reports whether a key is present and not expired.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return true, nil
}

// IncrBy adds val to the decimal counter at key, creating it at zero.
// An existing expiry is preserved.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	err := s.retry(func(txn *badger.Txn) error {
		var cur int64
		var expiresAt uint64

		item, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			cur, err = strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return fmt.Errorf("value is not an integer: %w", err)
			}
			expiresAt = item.ExpiresAt()
		}

		e := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(cur+val, 10)))
		if expiresAt > 0 {
			e.ExpiresAt = expiresAt
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return nil
}

// Expire sets a TTL on an existing key. When nx=true the TTL is applied only
// if the key has no expiry yet. Missing keys are ignored.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	err := s.retry(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if nx && item.ExpiresAt() != 0 {
			return nil
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(key), raw).WithTTL(ttl))
	})
	if err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}

// retry runs fn in a read-write transaction, retrying on optimistic conflicts.
func (s *Store) retry(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}
