// Package command defines the idmesh-node command line.
//
// One binary runs either node role and talks to a running frontend:
//
//	idmesh-node backend  -c node.yaml      run a backend node
//	idmesh-node frontend -c node.yaml      run a frontend node
//	idmesh-node config show|validate       inspect the merged configuration
//	idmesh-node ids next                   fetch IDs from a frontend
//	idmesh-node accounts create            create an account
//	idmesh-node cluster nodes              list cluster members
//	idmesh-node reset                      reset the frontend pipeline
//	idmesh-node local status               query a node's local console
//	idmesh-node version                    print build information
package command
