package clusterserver

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/memberlist"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// DiscoveryConfig configures the discovery mechanism.
type DiscoveryConfig struct {
	// NodeName is the unique gossip name of this node.
	NodeName string

	// BindAddr and BindPort are where gossip listens. Port 0 picks a
	// free port.
	BindAddr string
	BindPort int

	// AdvertiseAddr and AdvertisePort override what peers dial.
	AdvertiseAddr string
	AdvertisePort int

	// Seeds are gossip addresses joined on start.
	Seeds []string

	// Roles are published in node metadata and never change.
	Roles []string

	// Address is the host:port the node's units are reachable on.
	Address string

	// SecretKey enables gossip encryption. 16, 24 or 32 bytes.
	SecretKey []byte

	Logger logger.Logger
}

// nodeMeta is the JSON carried in memberlist node metadata.
type nodeMeta struct {
	Roles   []string `json:"roles"`
	Address string   `json:"addr"`
	UID     string   `json:"uid"`
}

type subscription struct {
	ref    actor.Ref
	filter domain.EventFilter
}

// Discovery tracks cluster membership over memberlist and publishes
// membership events to subscribed units.
type Discovery struct {
	cfg   DiscoveryConfig
	log   logger.Logger
	local domain.Member
	meta  []byte

	ml *memberlist.Memberlist

	mu       sync.Mutex
	members  map[string]domain.Member
	subs     map[string]subscription
	shutdown bool
}

// NewDiscovery builds the membership view without starting gossip, so
// units can subscribe before this node becomes visible to others.
func NewDiscovery(cfg DiscoveryConfig) (*Discovery, error) {
	if cfg.NodeName == "" {
		return nil, fmt.Errorf("discovery: node name is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	local := domain.Member{
		Name:    cfg.NodeName,
		UID:     ulid.Make().String(),
		Address: cfg.Address,
		Roles:   append([]string(nil), cfg.Roles...),
		Status:  domain.MemberStatusUp,
	}
	meta, err := json.Marshal(nodeMeta{Roles: local.Roles, Address: local.Address, UID: local.UID})
	if err != nil {
		return nil, fmt.Errorf("encode node metadata: %w", err)
	}
	if len(meta) > memberlist.MetaMaxSize {
		return nil, fmt.Errorf("node metadata is %d bytes, limit %d", len(meta), memberlist.MetaMaxSize)
	}

	return &Discovery{
		cfg:     cfg,
		log:     cfg.Logger.With("component", "discovery"),
		local:   local,
		meta:    meta,
		members: make(map[string]domain.Member),
		subs:    make(map[string]subscription),
	}, nil
}

// Start starts gossip and joins the configured seeds.
func (d *Discovery) Start() error {
	cfg := d.cfg
	mc := memberlist.DefaultLANConfig()
	mc.Name = cfg.NodeName
	mc.BindAddr = cfg.BindAddr
	mc.BindPort = cfg.BindPort
	mc.AdvertisePort = cfg.BindPort
	if cfg.AdvertiseAddr != "" {
		mc.AdvertiseAddr = cfg.AdvertiseAddr
	}
	if cfg.AdvertisePort != 0 {
		mc.AdvertisePort = cfg.AdvertisePort
	}
	mc.SecretKey = cfg.SecretKey
	mc.Delegate = d
	mc.Events = d
	mc.Logger = stdLogger("memberlist", d.log)

	ml, err := memberlist.Create(mc)
	if err != nil {
		return fmt.Errorf("create memberlist: %w", err)
	}
	d.ml = ml

	if len(cfg.Seeds) > 0 {
		n, err := ml.Join(cfg.Seeds)
		if err != nil {
			_ = ml.Shutdown()
			d.ml = nil
			return fmt.Errorf("join seed nodes: %w", err)
		}
		d.log.Info("joined cluster",
			"node", cfg.NodeName,
			"seeds", cfg.Seeds,
			"joined_count", n)
	} else {
		d.log.Info("started discovery (bootstrap mode)", "node", cfg.NodeName)
	}
	return nil
}

// Local returns this node's member entry.
func (d *Discovery) Local() domain.Member {
	return d.local
}

// GossipAddr returns the address peers join through.
func (d *Discovery) GossipAddr() string {
	if d.ml == nil {
		return ""
	}
	return d.ml.LocalNode().Address()
}

// Members returns every known member sorted by name.
func (d *Discovery) Members() []domain.Member {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sortedLocked()
}

// Subscribe sends ref the events selected by filter. The current state
// is replayed first: a MemberUp for every member that is up, then a
// MemberUnreachable for those currently unreachable.
func (d *Discovery) Subscribe(ref actor.Ref, filter domain.EventFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subs[ref.Address().String()] = subscription{ref: ref, filter: filter}

	members := d.sortedLocked()
	if filter.Has(domain.EventMemberUp) {
		for _, m := range members {
			if m.Status == domain.MemberStatusUp {
				ref.Tell(domain.MemberUp{Member: m}, nil)
			}
		}
	}
	if filter.Has(domain.EventMemberUnreachable) {
		for _, m := range members {
			if m.Status == domain.MemberStatusUnreachable {
				ref.Tell(domain.MemberUnreachable{Member: m}, nil)
			}
		}
	}
}

// Unsubscribe stops sending events to ref.
func (d *Discovery) Unsubscribe(ref actor.Ref) {
	d.mu.Lock()
	delete(d.subs, ref.Address().String())
	d.mu.Unlock()
}

// Leave broadcasts a graceful leave and waits up to timeout.
func (d *Discovery) Leave(timeout time.Duration) error {
	if d.ml == nil {
		return nil
	}
	if err := d.ml.Leave(timeout); err != nil {
		d.log.Error("failed to leave cluster", "error", err)
		return err
	}
	d.log.Info("left cluster")
	return nil
}

// Shutdown stops gossip. Safe to call more than once.
func (d *Discovery) Shutdown() error {
	d.mu.Lock()
	if d.shutdown {
		d.mu.Unlock()
		return nil
	}
	d.shutdown = true
	d.mu.Unlock()

	if d.ml == nil {
		return nil
	}
	if err := d.ml.Shutdown(); err != nil {
		return fmt.Errorf("shutdown memberlist: %w", err)
	}
	d.log.Info("discovery shutdown complete")
	return nil
}

// NotifyJoin implements memberlist.EventDelegate.
func (d *Discovery) NotifyJoin(node *memberlist.Node) {
	m := d.memberOf(node, domain.MemberStatusUp)

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.members[m.Name]; ok && prev.UID != m.UID {
		prev.Status = domain.MemberStatusRemoved
		delete(d.members, m.Name)
		d.log.Info("member restarted", "node", m.Name, "old_uid", prev.UID, "uid", m.UID)
		d.publishLocked(domain.EventMemberRemoved, domain.MemberRemoved{Member: prev})
	}
	d.members[m.Name] = m
	d.log.Info("member up", "node", m.Name, "address", m.Address, "roles", m.Roles)
	d.publishLocked(domain.EventMemberUp, domain.MemberUp{Member: m})
}

// NotifyLeave implements memberlist.EventDelegate. A graceful leave
// removes the member; a failed node is only marked unreachable.
func (d *Discovery) NotifyLeave(node *memberlist.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.members[node.Name]
	if !ok {
		m = d.memberOf(node, domain.MemberStatusUp)
	}

	if node.State == memberlist.StateDead {
		m.Status = domain.MemberStatusUnreachable
		d.members[m.Name] = m
		d.log.Warn("member unreachable", "node", m.Name, "address", m.Address)
		d.publishLocked(domain.EventMemberUnreachable, domain.MemberUnreachable{Member: m})
		return
	}

	m.Status = domain.MemberStatusRemoved
	delete(d.members, m.Name)
	d.log.Info("member removed", "node", m.Name, "address", m.Address)
	d.publishLocked(domain.EventMemberRemoved, domain.MemberRemoved{Member: m})
}

// NotifyUpdate implements memberlist.EventDelegate.
func (d *Discovery) NotifyUpdate(node *memberlist.Node) {
	d.log.Debug("member updated", "node", node.Name, "addr", node.Address())
}

// NodeMeta implements memberlist.Delegate.
func (d *Discovery) NodeMeta(limit int) []byte {
	if len(d.meta) > limit {
		d.log.Error("node metadata exceeds limit", "size", len(d.meta), "limit", limit)
		return nil
	}
	return d.meta
}

// NotifyMsg implements memberlist.Delegate. User messages are not used.
func (d *Discovery) NotifyMsg([]byte) {}

// GetBroadcasts implements memberlist.Delegate.
func (d *Discovery) GetBroadcasts(overhead, limit int) [][]byte { return nil }

// LocalState implements memberlist.Delegate.
func (d *Discovery) LocalState(join bool) []byte { return nil }

// MergeRemoteState implements memberlist.Delegate.
func (d *Discovery) MergeRemoteState(buf []byte, join bool) {}

func (d *Discovery) memberOf(node *memberlist.Node, status domain.MemberStatus) domain.Member {
	m := domain.Member{Name: node.Name, Status: status}

	var meta nodeMeta
	if err := json.Unmarshal(node.Meta, &meta); err != nil {
		d.log.Warn("member without readable metadata", "node", node.Name, "error", err)
		m.Address = node.Address()
		return m
	}
	m.UID = meta.UID
	m.Address = meta.Address
	m.Roles = meta.Roles
	return m
}

func (d *Discovery) publishLocked(kind domain.EventFilter, event any) {
	for _, s := range d.subs {
		if s.filter.Has(kind) {
			s.ref.Tell(event, nil)
		}
	}
}

func (d *Discovery) sortedLocked() []domain.Member {
	out := make([]domain.Member, 0, len(d.members))
	for _, m := range d.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
