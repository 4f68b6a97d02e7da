package service

import (
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// ProxyConfig configures a Proxy.
type ProxyConfig struct {
	// Service is the ServiceType this proxy binds to.
	Service domain.ServiceType
	// MaxBacklog caps messages held while unbound. Zero is unbounded.
	MaxBacklog int
	Metrics    *metric.Registry
}

type proxyState int

const (
	proxyUnbound proxyState = iota
	proxyBound
)

// Proxy is a stable local handle for a remote service that may not be
// known yet. While unbound it holds every message in arrival order and
// waits for a Registration announcing its service; once the announced
// address answers an Identify carrying the latest token, the held
// messages are replayed with their original senders and every later
// message is forwarded directly. A bound proxy stays bound for the
// rest of its incarnation.
type Proxy struct {
	cfg     ProxyConfig
	state   proxyState
	target  actor.Ref
	token   string
	backlog *actor.Backlog
}

// NewProxy returns an unbound proxy.
func NewProxy(cfg ProxyConfig) *Proxy {
	return &Proxy{
		cfg:     cfg,
		backlog: actor.NewBacklog(cfg.MaxBacklog),
	}
}

// ProxyProps returns Props creating a fresh, unbound Proxy per incarnation.
func ProxyProps(cfg ProxyConfig) actor.Props {
	return actor.PropsOf(func() actor.Actor { return NewProxy(cfg) })
}

func (p *Proxy) PreStart(ctx *actor.Context) error {
	p.observe()
	return nil
}

func (p *Proxy) Receive(ctx *actor.Context) error {
	switch p.state {
	case proxyUnbound:
		p.unbound(ctx)
	case proxyBound:
		p.bound(ctx)
	}
	return nil
}

func (p *Proxy) unbound(ctx *actor.Context) {
	switch m := ctx.Message().(type) {
	case domain.Registration:
		p.identify(ctx, m)
	case actor.Identity:
		p.resolve(ctx, m)
	default:
		if !p.backlog.Push(ctx.Envelope()) {
			ctx.Logger().Warn("proxy backlog full, message dropped",
				"service", p.cfg.Service,
				"message", typeName(m),
				"error", domain.ErrBacklogFull)
			if p.cfg.Metrics != nil {
				p.cfg.Metrics.ProxyDropped.WithLabelValues(string(p.cfg.Service)).Inc()
			}
		}
		p.observe()
	}
}

func (p *Proxy) bound(ctx *actor.Context) {
	switch ctx.Message().(type) {
	case domain.Registration, actor.Identity:
		ctx.Logger().Debug("proxy already bound, ignored", "service", p.cfg.Service)
	default:
		ctx.Forward(p.target)
	}
}

// identify queries the announced address of this proxy's service. A
// newer Registration replaces the outstanding token.
func (p *Proxy) identify(ctx *actor.Context, reg domain.Registration) {
	ann, ok := reg.Lookup(p.cfg.Service)
	if !ok {
		ctx.Logger().Debug("registration without service", "service", p.cfg.Service)
		return
	}
	addr, err := actor.ParseAddress(ann.Address)
	if err != nil {
		ctx.Logger().Warn("registration with bad address", "service", p.cfg.Service, "address", ann.Address, "error", err)
		return
	}

	p.token = ulid.Make().String()
	ctx.Resolve(addr).Tell(actor.Identify{Token: p.token}, ctx.Self())
	ctx.Logger().Debug("identifying service", "service", p.cfg.Service, "address", addr.String(), "token", p.token)
}

func (p *Proxy) resolve(ctx *actor.Context, id actor.Identity) {
	if p.token == "" || id.Token != p.token {
		ctx.Logger().Debug("stale identity discarded", "service", p.cfg.Service, "token", id.Token)
		return
	}
	p.token = ""
	if id.Address.IsZero() {
		ctx.Logger().Warn("announced service not found", "service", p.cfg.Service, "error", domain.ErrServiceNotFound)
		return
	}

	p.target = ctx.Resolve(id.Address)
	p.state = proxyBound
	held := p.backlog.Len()
	p.backlog.Replay(func(env actor.Envelope) {
		p.target.Tell(env.Message, env.Sender)
	})
	ctx.Logger().Info("proxy bound", "service", p.cfg.Service, "target", id.Address.String(), "replayed", held)
	p.observe()
}

func (p *Proxy) observe() {
	if p.cfg.Metrics == nil {
		return
	}
	svc := string(p.cfg.Service)
	p.cfg.Metrics.ProxyBacklog.WithLabelValues(svc).Set(float64(p.backlog.Len()))
	bound := 0.0
	if p.state == proxyBound {
		bound = 1
	}
	p.cfg.Metrics.ProxyBound.WithLabelValues(svc).Set(bound)
}
