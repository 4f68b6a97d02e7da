// Package storage provides the embedded persistence idmesh uses on
// backend nodes.
//
//   - kv.go: the KVEngine interface and its configuration
//   - badger.go: the Badger v3 implementation (on disk or in memory)
//   - watermark.go: durable range allocator watermark
//   - journal.go: append-only journal of submitted ledger batches
//
// Without a data directory the engine runs in memory, which keeps the
// allocator's watermark for the life of the process only.
package storage
