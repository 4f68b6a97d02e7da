// Package service implements the units of the ID pipeline and the
// services built on top of them.
//
// Backend units:
//
//   - Allocator: hands out disjoint ranges from one watermark
//   - Announcer: pushes this node's services to every frontend that joins
//   - LedgerBatcher: submits ledger operations in timed batches
//
// Frontend units:
//
//   - Proxy: a local handle for a backend service that is not known yet
//   - Listener: fans backend registrations out to the proxies
//   - IDCache: serves single IDs from a prefetched range
//   - ResetCoordinator: resets every sibling and acknowledges after a delay
//   - LedgerForwarder: sends ledger operations through the ledger proxy
//
// AccountService is the synchronous entry point used by the HTTP API.
package service
