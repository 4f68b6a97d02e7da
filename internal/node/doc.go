// Package node assembles an idmesh node with fx.
//
// Core carries what both roles share. Backend and Frontend add the unit
// tree of their role. Units are created while the graph is built and
// the node only joins gossip on start, so peers never address a unit
// that does not exist yet.
package node
