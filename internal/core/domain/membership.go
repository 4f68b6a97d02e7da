package domain

import "slices"

// MemberStatus is a member's reachability as last observed.
type MemberStatus int

const (
	MemberStatusUp MemberStatus = iota
	MemberStatusUnreachable
	MemberStatusRemoved
)

func (s MemberStatus) String() string {
	switch s {
	case MemberStatusUp:
		return "up"
	case MemberStatusUnreachable:
		return "unreachable"
	case MemberStatusRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Member is one node of the cluster.
type Member struct {
	// Name is the gossip node name.
	Name string `json:"name"`
	// UID identifies one incarnation of the node. It changes on restart.
	UID string `json:"uid"`
	// Address is the host the node's units are reachable on.
	Address string       `json:"address"`
	Roles   []string     `json:"roles"`
	Status  MemberStatus `json:"status"`
}

// HasRole reports whether m carries role.
func (m Member) HasRole(role string) bool {
	return slices.Contains(m.Roles, role)
}

// Membership events, delivered to subscribed units.
type (
	MemberUp          struct{ Member Member }
	MemberRemoved     struct{ Member Member }
	MemberUnreachable struct{ Member Member }
)

// EventFilter selects membership event kinds.
type EventFilter uint8

const (
	EventMemberUp EventFilter = 1 << iota
	EventMemberRemoved
	EventMemberUnreachable

	EventAll = EventMemberUp | EventMemberRemoved | EventMemberUnreachable
)

// Has reports whether f includes every kind in k.
func (f EventFilter) Has(k EventFilter) bool {
	return f&k == k
}

// Departed asks a membership listener for the peers it saw leave.
type Departed struct{}

// DepartedPeers answers Departed.
type DepartedPeers struct {
	Members []Member
}
