// Package main provides the entry point for idmesh-node.
//
// idmesh-node runs a backend or frontend node of an idmesh cluster and
// doubles as the client of a running frontend.
//
// Usage:
//
//	idmesh-node backend  --config /etc/idmesh/backend.yaml
//	idmesh-node frontend --config /etc/idmesh/frontend.yaml
//	idmesh-node --server 127.0.0.1:8080 ids next -n 5
package main

import (
	"os"

	"github.com/yndnr/idmesh-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
