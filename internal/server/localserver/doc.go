// Package localserver provides the local management console of a node.
//
// The console listens on a Unix domain socket and answers one text
// command per connection. Access is controlled by the socket's file
// permissions (0600), so no credentials are exchanged:
//
//	status              role, name, unit count, system state and uptime
//	members             the membership view of this node
//	loglevel [LEVEL]    show or change the log level
//	shutdown            stop the node gracefully
//
// Backend nodes have no HTTP API, so this is their only operator surface
// besides the logs.
package localserver
