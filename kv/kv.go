package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a minimal durable key-value store. Implementations must make
// Set atomic from the caller's perspective and Delete idempotent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
