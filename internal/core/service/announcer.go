package service

import (
	"fmt"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// AnnouncerConfig configures an Announcer.
type AnnouncerConfig struct {
	Membership Membership
	// Services are announced in this order.
	Services []LocalService
	Metrics  *metric.Registry
}

// Announcer runs on a backend. It sends a Registration of the backend's
// services to the listener of every frontend that comes up, once per
// frontend incarnation.
type Announcer struct {
	cfg       AnnouncerConfig
	announced map[string]bool
}

// NewAnnouncer returns an announcer that has announced to no one.
func NewAnnouncer(cfg AnnouncerConfig) *Announcer {
	return &Announcer{cfg: cfg, announced: make(map[string]bool)}
}

// AnnouncerProps returns Props creating a fresh Announcer per incarnation.
func AnnouncerProps(cfg AnnouncerConfig) actor.Props {
	return actor.PropsOf(func() actor.Actor { return NewAnnouncer(cfg) })
}

func (a *Announcer) PreStart(ctx *actor.Context) error {
	if a.cfg.Membership == nil {
		return fmt.Errorf("%w: announcer needs a membership", actor.ErrInvalidArgument)
	}
	a.cfg.Membership.Subscribe(ctx.Self(), domain.EventMemberUp|domain.EventMemberRemoved|domain.EventMemberUnreachable)
	return nil
}

func (a *Announcer) PostStop(ctx *actor.Context) {
	if a.cfg.Membership != nil {
		a.cfg.Membership.Unsubscribe(ctx.Self())
	}
}

func (a *Announcer) Receive(ctx *actor.Context) error {
	switch m := ctx.Message().(type) {
	case domain.MemberUp:
		a.announce(ctx, m.Member)
	case domain.MemberRemoved:
		delete(a.announced, m.Member.UID)
	case domain.MemberUnreachable:
		// Announced again once it is back up.
		delete(a.announced, m.Member.UID)
	default:
		ctx.Unhandled()
	}
	return nil
}

func (a *Announcer) announce(ctx *actor.Context, m domain.Member) {
	if !m.HasRole(domain.RoleFrontend) || a.announced[m.UID] {
		return
	}
	a.announced[m.UID] = true

	reg := a.registration(ctx)
	to := actor.Address{Host: m.Address, Path: domain.FrontendPath}
	ctx.Resolve(to).Tell(reg, ctx.Self())

	if a.cfg.Metrics != nil {
		a.cfg.Metrics.Announcements.Inc()
	}
	ctx.Logger().Info("announced services", "frontend", m.Name, "to", to.String(), "services", len(reg.Actors))
}

func (a *Announcer) registration(ctx *actor.Context) domain.Registration {
	sys := ctx.System()
	anns := make([]domain.ServiceAnnouncement, 0, len(a.cfg.Services))
	for _, s := range a.cfg.Services {
		anns = append(anns, domain.ServiceAnnouncement{
			Type:    s.Type,
			Address: sys.Address(s.Path).String(),
		})
	}
	return domain.NewRegistration(anns...)
}
