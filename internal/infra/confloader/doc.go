// Package confloader loads node configuration with koanf and watches
// the configuration file for changes.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. Defaults already present in the target struct
//  2. The YAML configuration file
//  3. Environment variables (IDMESH_ prefix)
//  4. Explicit maps, used for command-line flags
//
// Environment keys use a double underscore between sections so that
// single underscores inside key names survive:
//
//	IDMESH_FRONTEND__ID_POOL=128   ->  frontend.id_pool
package confloader
