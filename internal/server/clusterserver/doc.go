// Package clusterserver connects actor systems running on different nodes.
//
// It provides two independent pieces:
//
//   - Discovery tracks cluster membership over memberlist gossip and
//     publishes MemberUp, MemberUnreachable and MemberRemoved events to
//     subscribed units.
//   - Transport and Server carry unit messages between nodes over a
//     Connect unary RPC encoded with msgpack.
//
// Messages crossing the node boundary must be registered in a TypeRegistry
// on both sides.
package clusterserver
