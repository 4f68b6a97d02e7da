// Package config defines the node configuration.
//
//   - spec.go: NodeConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking of secrets before logging
//   - cluster.go: mapping to the cluster layer
//
// Values are loaded by internal/infra/confloader from a YAML file and
// IDMESH_ environment variables, on top of Default().
package config
