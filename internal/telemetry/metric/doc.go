// Package metric provides Prometheus metrics for idmesh.
//
//   - prometheus.go: the per-process Registry and its HTTP handler
//   - collector.go: scrape-time collectors
//
// Metrics cover unit throughput and supervision, ID issuance and
// caching, discovery proxies, membership, transport and HTTP requests.
// They are exposed at /metrics in Prometheus format.
package metric
