// Package domain defines the values exchanged by idmesh units and the
// coded errors surfaced to clients.
//
//   - messages.go: service announcements, registrations and the ID protocol
//   - membership.go: cluster members and membership events
//   - ledger.go: ledger operations and their results
//   - errors.go: DomainError and the predefined error codes
//
// Message types are plain values with msgpack field tags. They carry no
// behavior beyond small lookups and are safe to share between units.
package domain
