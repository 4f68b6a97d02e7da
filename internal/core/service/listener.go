package service

import (
	"sort"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	Membership Membership
	// Proxies receive every Registration.
	Proxies []actor.Ref
	Metrics *metric.Registry
}

// Listener runs on a frontend at the well-known FrontendPath. It hands
// every Registration to all proxies unmodified and keeps track of the
// peers that left or became unreachable.
type Listener struct {
	cfg      ListenerConfig
	departed map[string]domain.Member
}

// NewListener returns a listener with no departed peers.
func NewListener(cfg ListenerConfig) *Listener {
	return &Listener{cfg: cfg, departed: make(map[string]domain.Member)}
}

// ListenerProps returns Props creating a fresh Listener per incarnation.
func ListenerProps(cfg ListenerConfig) actor.Props {
	return actor.PropsOf(func() actor.Actor { return NewListener(cfg) })
}

func (l *Listener) PreStart(ctx *actor.Context) error {
	if l.cfg.Membership != nil {
		l.cfg.Membership.Subscribe(ctx.Self(), domain.EventAll)
	}
	l.observe()
	return nil
}

func (l *Listener) PostStop(ctx *actor.Context) {
	if l.cfg.Membership != nil {
		l.cfg.Membership.Unsubscribe(ctx.Self())
	}
}

func (l *Listener) Receive(ctx *actor.Context) error {
	switch m := ctx.Message().(type) {
	case domain.Registration:
		for _, p := range l.cfg.Proxies {
			p.Tell(m, ctx.Sender())
		}
		ctx.Logger().Debug("registration fanned out", "services", len(m.Actors), "proxies", len(l.cfg.Proxies))
	case domain.MemberUp:
		if _, ok := l.departed[m.Member.Name]; ok {
			delete(l.departed, m.Member.Name)
			l.observe()
		}
	case domain.MemberRemoved:
		l.depart(ctx, m.Member)
	case domain.MemberUnreachable:
		l.depart(ctx, m.Member)
	case domain.Departed:
		ctx.Reply(domain.DepartedPeers{Members: l.snapshot()})
	default:
		ctx.Unhandled()
	}
	return nil
}

func (l *Listener) depart(ctx *actor.Context, m domain.Member) {
	l.departed[m.Name] = m
	ctx.Logger().Info("peer departed", "node", m.Name, "status", m.Status.String())
	l.observe()
}

func (l *Listener) snapshot() []domain.Member {
	out := make([]domain.Member, 0, len(l.departed))
	for _, m := range l.departed {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (l *Listener) observe() {
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.MembershipDeparted.Set(float64(len(l.departed)))
	}
}
