// Package output renders idmesh-node client results.
//
// A result is printed as a table, JSON or YAML. Values that know how to
// lay themselves out implement Tabular; anything else falls back to a
// KEY/VALUE table for maps and to JSON otherwise.
package output
