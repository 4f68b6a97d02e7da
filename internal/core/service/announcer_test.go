package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

func frontend(name, uid string) domain.Member {
	return domain.Member{Name: name, UID: uid, Roles: []string{domain.RoleFrontend}}
}

var backendServices = []LocalService{
	{Type: domain.ServiceIDGenerator, Path: "/user/backend/allocator"},
	{Type: domain.ServiceLedger, Path: "/user/backend/ledger"},
}

// startAnnouncer spawns a relay at the frontend listener path so every
// Registration lands in the returned inbox.
func startAnnouncer(t *testing.T, sys *actor.System, membership Membership, reg *metric.Registry) (*actor.Inbox, actor.Ref) {
	t.Helper()
	sink := sys.NewInbox()
	t.Cleanup(sink.Close)
	spawn(t, sys, relayProps(sink.Ref()), "frontend")

	ann := spawn(t, sys, AnnouncerProps(AnnouncerConfig{
		Membership: membership,
		Services:   backendServices,
		Metrics:    reg,
	}), "backend")
	return sink, ann
}

func TestAnnouncer_AnnouncesToEachFrontendOnce(t *testing.T) {
	reg := metric.NewRegistry()
	sys := newTestSystem(t)
	membership := newFakeMembership(
		frontend("fe-1", "uid-1"),
		domain.Member{Name: "be-1", UID: "uid-b", Roles: []string{domain.RoleBackend}},
	)
	sink, ann := startAnnouncer(t, sys, membership, reg)

	env := receive(t, sink)
	assert.Equal(t, domain.Registration{Actors: []domain.ServiceAnnouncement{
		{Type: domain.ServiceIDGenerator, Address: "/user/backend/allocator"},
		{Type: domain.ServiceLedger, Address: "/user/backend/ledger"},
	}}, env.Message)
	assert.True(t, actor.SameRef(ann, env.Sender))

	// A replayed MemberUp for the same incarnation is not announced again.
	membership.Publish(domain.MemberUp{Member: frontend("fe-1", "uid-1")})
	expectNothing(t, sink, 50*time.Millisecond)

	membership.Publish(domain.MemberUp{Member: frontend("fe-2", "uid-2")})
	_, ok := receive(t, sink).Message.(domain.Registration)
	assert.True(t, ok)
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.Announcements))
}

func TestAnnouncer_ReannouncesAfterRemoval(t *testing.T) {
	sys := newTestSystem(t)
	membership := newFakeMembership()
	sink, _ := startAnnouncer(t, sys, membership, nil)
	require.Eventually(t, func() bool { return membership.Subscribers() == 1 }, testTimeout, 10*time.Millisecond)

	fe := frontend("fe-1", "uid-1")
	membership.Publish(domain.MemberUp{Member: fe})
	receive(t, sink)

	membership.Publish(domain.MemberRemoved{Member: fe})
	membership.Publish(domain.MemberUp{Member: fe})
	_, ok := receive(t, sink).Message.(domain.Registration)
	assert.True(t, ok)
}

func TestAnnouncer_NewIncarnationIsAnnounced(t *testing.T) {
	sys := newTestSystem(t)
	membership := newFakeMembership(frontend("fe-1", "uid-1"))
	sink, _ := startAnnouncer(t, sys, membership, nil)
	receive(t, sink)

	membership.Publish(domain.MemberUp{Member: frontend("fe-1", "uid-2")})
	receive(t, sink)
}

func TestAnnouncer_IgnoresBackendsAndUnsubscribesOnStop(t *testing.T) {
	sys := newTestSystem(t)
	membership := newFakeMembership(domain.Member{Name: "be-2", UID: "uid-b2", Roles: []string{domain.RoleBackend}})
	sink, ann := startAnnouncer(t, sys, membership, nil)
	expectNothing(t, sink, 50*time.Millisecond)

	sys.Stop(ann)
	require.Eventually(t, func() bool { return membership.Unsubscribed() == 1 }, testTimeout, 10*time.Millisecond)
	assert.Zero(t, membership.Subscribers())
}

func TestAnnouncer_UnreachableFrontendIsAnnouncedOnRecovery(t *testing.T) {
	sys := newTestSystem(t)
	down := frontend("fe-1", "uid-1")
	down.Status = domain.MemberStatusUnreachable
	membership := newFakeMembership(down, frontend("fe-2", "uid-2"))
	sink, _ := startAnnouncer(t, sys, membership, nil)

	// Only the frontend that is up gets a registration from the replay.
	receive(t, sink)
	expectNothing(t, sink, 50*time.Millisecond)

	membership.Publish(domain.MemberUp{Member: frontend("fe-1", "uid-1")})
	_, ok := receive(t, sink).Message.(domain.Registration)
	assert.True(t, ok)
}

func TestAnnouncer_ReannouncesAfterUnreachable(t *testing.T) {
	sys := newTestSystem(t)
	membership := newFakeMembership(frontend("fe-1", "uid-1"))
	sink, _ := startAnnouncer(t, sys, membership, nil)
	receive(t, sink)

	fe := frontend("fe-1", "uid-1")
	fe.Status = domain.MemberStatusUnreachable
	membership.Publish(domain.MemberUnreachable{Member: fe})
	membership.Publish(domain.MemberUp{Member: frontend("fe-1", "uid-1")})
	_, ok := receive(t, sink).Message.(domain.Registration)
	assert.True(t, ok)
}

func TestAnnouncer_NoMembershipStopsOnFirstFault(t *testing.T) {
	reg := metric.NewRegistry()
	sys := newTestSystem(t, actor.WithMetrics(reg))
	sup := spawn(t, sys, actor.SupervisorProps(&actor.Strategy{
		Decider:   actor.DefaultDecider,
		MaxFaults: 3,
		Window:    time.Hour,
	}), "supervisor")

	_, err := actor.CreateChild(context.Background(), sys, sup,
		AnnouncerProps(AnnouncerConfig{Services: backendServices}), "announcer", testTimeout)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := sys.Lookup("/user/supervisor/announcer")
		return !ok
	}, testTimeout, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Faults.WithLabelValues("stop")))
	assert.Zero(t, testutil.ToFloat64(reg.Faults.WithLabelValues("restart")))
}
