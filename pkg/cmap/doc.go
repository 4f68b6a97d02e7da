// Package cmap provides a concurrent-safe sharded map.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex, so readers on different shards never contend. The
// unit registry of an actor system and the per-client rate limit
// buckets of the HTTP API both live in one.
//
// Usage:
//
//	m := cmap.New[string, int]()
//	m.SetIfAbsent("/user/ids", 1)
//	v, ok := m.Get("/user/ids")
package cmap
