package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hamed0406/timewatch/internal/domain"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	want := domain.NewRecord("2025-09-05 12:30:00", domain.StatusFailed, time.Now())
	if err := s.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, domain.RecordID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if ttl := mr.TTL(keyPrefix + domain.RecordID); ttl != 0 {
		t.Fatalf("record should not expire, ttl=%v", ttl)
	}
}

func TestRedisStore_OverwriteKeepsOneKey(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	_ = s.Put(ctx, domain.NewRecord("a", domain.StatusOK, time.Now()))
	_ = s.Put(ctx, domain.NewRecord("b", domain.StatusDegraded, time.Now()))
	if keys := mr.Keys(); len(keys) != 1 {
		t.Fatalf("want one key, got %v", keys)
	}
	got, _ := s.Get(ctx, domain.RecordID)
	if got.FetchedTime != "b" || got.Status != domain.StatusDegraded {
		t.Fatalf("want last write, got %+v", got)
	}
}

func TestRedisStore_GetMissing(t *testing.T) {
	s, _ := newStore(t)
	rec, err := s.Get(context.Background(), domain.RecordID)
	if err != nil || rec != nil {
		t.Fatalf("expected nil, got %+v err=%v", rec, err)
	}
}

func TestRedisStore_MalformedValue(t *testing.T) {
	s, mr := newStore(t)
	mr.Set(keyPrefix+domain.RecordID, "{not json")
	if _, err := s.Get(context.Background(), domain.RecordID); err == nil {
		t.Fatal("want decode error")
	}
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	mr.Close()
	if err := s.Put(context.Background(), domain.NewRecord("", domain.StatusUnknown, time.Now())); err == nil {
		t.Fatal("want error when redis is down")
	}
}
