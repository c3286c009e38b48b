package badger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pathwise-edu/pathwise/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory badger: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStore_GetSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("expected v, got %s", got)
	}
}

func TestStore_SetWithTTL_Expires(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// badger TTL has second granularity
	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if ok, _ := s.Exists(ctx, "k"); !ok {
		t.Fatal("expected key to exist before expiry")
	}

	time.Sleep(2100 * time.Millisecond)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected expired key, got %v", err)
	}
}

func TestStore_Del(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("v"))
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Error("expected key to be gone")
	}
	if err := s.Del(ctx, "never-existed"); err != nil {
		t.Errorf("Del of missing key should not fail: %v", err)
	}
}

func TestStore_IncrBy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, n := range []int64{5, 7, -2} {
		if err := s.IncrBy(ctx, "counter", n); err != nil {
			t.Fatalf("IncrBy(%d): %v", n, err)
		}
	}
	got, _ := s.Get(ctx, "counter")
	if string(got) != "10" {
		t.Errorf("expected 10, got %s", got)
	}
}

func TestStore_IncrBy_NotInteger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("abc"))
	err := s.IncrBy(ctx, "k", 1)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpIncrBy {
		t.Fatalf("expected *db.Error with op INCRBY, got %v", err)
	}
}

func TestStore_IncrBy_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.IncrBy(ctx, "counter", 1)
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, "counter")
	if string(got) != "4" {
		t.Errorf("expected 4, got %q", got)
	}
}

func TestStore_Expire_NX(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.IncrBy(ctx, "counter", 1)
	if err := s.Expire(ctx, "counter", time.Hour, true); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	first := expiresAt(t, s, "counter")
	if first == 0 {
		t.Fatal("expected expiry to be set")
	}

	// NX keeps the first deadline
	if err := s.Expire(ctx, "counter", 48*time.Hour, true); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if got := expiresAt(t, s, "counter"); got != first {
		t.Errorf("NX should not move expiry: %d -> %d", first, got)
	}

	// IncrBy keeps the deadline too
	_ = s.IncrBy(ctx, "counter", 1)
	if got := expiresAt(t, s, "counter"); got != first {
		t.Errorf("IncrBy should preserve expiry: %d -> %d", first, got)
	}

	// without NX the deadline moves
	if err := s.Expire(ctx, "counter", 48*time.Hour, false); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if got := expiresAt(t, s, "counter"); got <= first {
		t.Errorf("expected expiry to move forward, got %d (was %d)", got, first)
	}
}

func TestStore_Expire_MissingKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.Expire(context.Background(), "missing", time.Hour, false); err != nil {
		t.Errorf("Expire on missing key should be a no-op, got %v", err)
	}
}

func TestStore_PingAfterClose(t *testing.T) {
	s, err := NewStore(Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
	s.Close()
	if err := s.Ping(context.Background()); !errors.Is(err, db.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func expiresAt(t *testing.T, s *Store, key string) uint64 {
	t.Helper()
	var out uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out = item.ExpiresAt()
		return nil
	})
	if err != nil {
		t.Fatalf("read expiry: %v", err)
	}
	return out
}
