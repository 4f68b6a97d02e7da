package storage

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// KVEngine is the embedded key-value store behind the watermark store
// and the ledger journal. Implementations are safe for concurrent use.
type KVEngine interface {
	// Get retrieves a value by key. Returns ErrKeyNotFound if absent.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// SetBatch stores several pairs atomically.
	SetBatch(ctx context.Context, kvs []KV) error

	// Delete removes a key.
	Delete(ctx context.Context, key []byte) error

	// Scan iterates over keys with a given prefix in key order.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// Close releases the engine.
	Close() error
}

// KV is one key-value pair of a batch.
type KV struct {
	Key   []byte
	Value []byte
}

// KVConfig configures the embedded KV engine.
type KVConfig struct {
	// Dir is the storage directory. Empty means in-memory.
	Dir string

	// GCInterval is the interval between value log GC runs.
	// Default: 10m. Ignored in memory.
	GCInterval string

	// GCThreshold is the discard ratio that makes a value log file
	// eligible for rewrite. Default: 0.5
	GCThreshold float64

	// SyncWrites fsyncs after each write. The allocator relies on it:
	// a watermark acknowledged to a client must survive a crash.
	SyncWrites bool
}

// DefaultKVConfig returns the default configuration for dir.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Dir:         dir,
		GCInterval:  "10m",
		GCThreshold: 0.5,
		SyncWrites:  true,
	}
}
