package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	file, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"redis":  NewRedis(rdb, "ak"),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "session"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on empty store, got %v", err)
			}

			if err := store.Set(ctx, "session", []byte("v1")); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, "session", []byte("v2")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := store.Get(ctx, "session")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != "v2" {
				t.Fatalf("expected overwritten value, got %q", got)
			}
		})
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "session", []byte("v")); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Delete(ctx, "session"); err != nil {
				t.Fatalf("first delete: %v", err)
			}
			if err := store.Delete(ctx, "session"); err != nil {
				t.Fatalf("second delete should be a no-op: %v", err)
			}
			if _, err := store.Get(ctx, "session"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got[0] = 'x'

	again, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}
