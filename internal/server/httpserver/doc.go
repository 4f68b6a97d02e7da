// Package httpserver provides the HTTP server of a frontend node.
//
// Routes:
//
//   - Account endpoints: POST /accounts, GET /ids/next
//   - Admin endpoints: POST /admin/v1/reset, GET /admin/v1/cluster/nodes
//   - Health endpoints: /health, /ready, /metrics
//
// Every route runs RequestID, Recover and Audit. Account endpoints add a
// per-client RateLimit; admin endpoints add an optional NetworkACL.
package httpserver
