// Package logger provides structured logging for idmesh.
//
// It wraps log/slog:
//
//   - logger.go: handler selection, global level and package-level helpers
//   - context.go: context-aware logging with request IDs
//   - redact.go: masking of credential-like attributes
//
// Third-party libraries (memberlist, badger) log through adapters that
// forward into the same handler, so one level setting governs every
// line the process writes.
package logger
