package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	ctx := context.Background()

	sess := Session{
		Token: "tok-123",
		User:  User{Username: "masha", IsAdmin: true},
		Flash: &Flash{Kind: "success", Message: "Welcome back"},
	}
	if err := store.Put(ctx, "sid-1", sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != sess.Token || got.User != sess.User {
		t.Fatalf("got %+v, want %+v", got, sess)
	}
	if got.Flash == nil || got.Flash.Message != "Welcome back" {
		t.Fatalf("flash lost: %+v", got.Flash)
	}

	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-2", Session{Token: "tok"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "sid-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing session: got %v, want ErrNotFound", err)
	}
	if err := store.Put(ctx, "sid", Session{Token: "tok"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "sid")
	if err != nil || got.Token != "tok" {
		t.Fatalf("get: %+v, %v", got, err)
	}
}
