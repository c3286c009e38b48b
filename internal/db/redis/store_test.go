package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/pathwise-edu/pathwise/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected *db.Error with op PING, got %v", err)
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisBlobString("value")))

	s := NewStoreForTest(c)
	data, err := s.Get(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_NetworkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.ErrorResult(errors.New("connection reset")))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
}

func TestSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.Set(context.Background(), "mykey", []byte("myvalue")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue", "EX", "60")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "mykey", []byte("myvalue"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(errors.New("OOM")))

	s := NewStoreForTest(c)
	err := s.SetWithTTL(context.Background(), "mykey", []byte("v"), time.Minute)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSet {
		t.Fatalf("expected *db.Error with op SET, got %v", err)
	}
}

func TestDel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "mykey")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "mykey"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	for _, tc := range []struct {
		reply int64
		want  bool
	}{{1, true}, {0, false}} {
		ctrl := gomock.NewController(t)
		c := mock.NewClient(ctrl)

		c.EXPECT().
			Do(gomock.Any(), mock.Match("EXISTS", "mykey")).
			Return(mock.Result(mock.RedisInt64(tc.reply)))

		s := NewStoreForTest(c)
		exists, err := s.Exists(context.Background(), "mykey")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists != tc.want {
			t.Errorf("reply %d: expected %v, got %v", tc.reply, tc.want, exists)
		}
	}
}

func TestIncrBy_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCRBY", "counter", "5")).
		Return(mock.Result(mock.RedisInt64(5)))

	s := NewStoreForTest(c)
	if err := s.IncrBy(context.Background(), "counter", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_WithoutNX(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "mykey", "300")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Expire(context.Background(), "mykey", 300*time.Second, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_WithNX(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "mykey", "300", "NX")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Expire(context.Background(), "mykey", 300*time.Second, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
