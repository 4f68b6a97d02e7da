// Package actor is the mailbox-serialized unit runtime idmesh is built on.
//
// A unit is a value implementing Actor. Each unit owns an unbounded FIFO
// mailbox drained by exactly one goroutine, so its state is never
// touched concurrently. Units form a tree rooted at the /user guardian;
// a parent's Strategy decides what happens to a child that faults
// (returns an error or panics): resume, restart with fresh state,
// stop, or escalate the fault to the parent.
//
// Units are addressed by Address. A Ref obtained from Spawn delivers to
// one incarnation; a Ref obtained from Resolve looks the path up on each
// send, and addresses on another host are handed to the configured
// Transport. Every path answers Identify with its own address, which is
// how discovery proxies turn an announced address into a live handle.
//
//   - address.go: Address parsing and formatting
//   - ref.go: Ref implementations (local, path, remote)
//   - mailbox.go, process.go: mailbox and the per-unit run loop
//   - supervision.go: directives, deciders and fault budgets
//   - system.go: System, registry, dead letters
//   - context.go: per-message Context
//   - router.go: round-robin pools and Broadcast
//   - supervisor.go: the Create/NamedCreate supervisor unit
//   - inbox.go: Inbox and Ask for callers outside the system
//   - backlog.go: ordered stash used by units that defer messages
package actor
