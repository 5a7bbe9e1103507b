package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "")
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testSession(refresh string) *Session {
	return &Session{
		UserID:       "u-1",
		RefreshToken: refresh,
		IP:           "10.0.0.1",
		UserAgent:    "curl/8.0",
	}
}

func TestSaveAndGet(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession("r1"), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != *testSession("r1") {
		t.Fatalf("unexpected session: %+v", got)
	}

	if ttl := mr.TTL("session:u-1"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}
	if v := mr.HGet("session:u-1", "refreshToken"); v != "r1" {
		t.Fatalf("expected refreshToken field r1, got %q", v)
	}
}

func TestSaveReplacesPriorSession(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	first := testSession("r1")
	first.UserAgent = "old-agent"
	if err := store.Save(ctx, first, time.Hour); err != nil {
		t.Fatalf("save first: %v", err)
	}
	mr.HSet("session:u-1", "stale", "x")

	second := testSession("r2")
	if err := store.Save(ctx, second, 2*time.Hour); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := store.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RefreshToken != "r2" || got.UserAgent != "curl/8.0" {
		t.Fatalf("expected second session, got %+v", got)
	}
	if mr.HGet("session:u-1", "stale") != "" {
		t.Fatal("expected replace to drop unknown fields")
	}
	if ttl := mr.TTL("session:u-1"); ttl != 2*time.Hour {
		t.Fatalf("expected ttl reset to 2h, got %v", ttl)
	}
}

func TestGetMissingSession(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()

	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for empty id, got %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession("r1"), time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(time.Minute + time.Second)

	if _, err := store.Get(ctx, "u-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession("r1"), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "u-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "u-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Get(ctx, "u-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestNamespaceIsPrepended(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewStore(rdb, "app:")
	if err := store.Save(context.Background(), testSession("r1"), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("app:session:u-1") {
		t.Fatal("expected namespaced key")
	}
}

func TestRejectsInvalidSave(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, &Session{}, time.Hour); err == nil {
		t.Fatal("expected error for missing user id")
	}
	if err := store.Save(ctx, testSession("r1"), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestUnavailableRedis(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	mr.Close()

	_, err := store.Get(context.Background(), "u-1")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := store.Ping(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ping to fail, got %v", err)
	}
}
