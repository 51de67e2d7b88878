package db

import (
	"context"
	"time"
)

// Store is the key-value database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	HashStore
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// ListStore provides the list operations a reliable work queue needs.
// Pops move an element atomically into a second list so a crashed consumer
// leaves it recoverable.
type ListStore interface {
	LPush(ctx context.Context, key string, values ...string) error
	// BLMove blocks up to timeout; returns ErrKeyNotFound when nothing arrived.
	BLMove(ctx context.Context, src, dst string, timeout time.Duration) (string, error)
	// LMove returns ErrKeyNotFound when src is empty.
	LMove(ctx context.Context, src, dst string) (string, error)
	LRem(ctx context.Context, key, value string) error
	LLen(ctx context.Context, key string) (int64, error)
}
