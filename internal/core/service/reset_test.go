package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
)

func TestResetCoordinator_BroadcastsAndAcksAfterDelay(t *testing.T) {
	const delay = 5 * time.Second
	mock := clock.NewMock()
	sys := newTestSystem(t, actor.WithClock(mock))
	sup := spawn(t, sys, actor.SupervisorProps(actor.DefaultStrategy()), "frontend")

	sink := sys.NewInbox()
	defer sink.Close()
	create := func(props actor.Props, name string) actor.Ref {
		ref, err := actor.CreateChild(context.Background(), sys, sup, props, name, testTimeout)
		require.NoError(t, err)
		return ref
	}
	create(relayProps(sink.Ref()), "ledger-proxy")
	create(relayProps(sink.Ref()).WithRoutees(3), "ids")
	coordinator := create(ResetCoordinatorProps(delay), "reset")

	requester := sys.NewInbox()
	defer requester.Close()
	coordinator.Tell(domain.Reset{}, requester.Ref())

	// One Reset per unit: the plain sibling and each of the pool's routees.
	for range 4 {
		env := receive(t, sink)
		assert.Equal(t, domain.Reset{}, env.Message)
		assert.True(t, actor.SameRef(coordinator, env.Sender))
	}
	expectNothing(t, sink, 50*time.Millisecond)
	expectNothing(t, requester, 50*time.Millisecond)

	mock.Add(delay - time.Millisecond)
	expectNothing(t, requester, 50*time.Millisecond)

	mock.Add(time.Millisecond)
	env := receive(t, requester)
	assert.Equal(t, domain.Reseted{}, env.Message)
	assert.True(t, actor.SameRef(coordinator, env.Sender))
}

func TestResetCoordinator_IgnoresItsOwnReset(t *testing.T) {
	sys := newTestSystem(t)
	sup := spawn(t, sys, actor.SupervisorProps(actor.DefaultStrategy()), "frontend")
	sink := sys.NewInbox()
	defer sink.Close()

	_, err := actor.CreateChild(context.Background(), sys, sup, relayProps(sink.Ref()), "sibling", testTimeout)
	require.NoError(t, err)
	coordinator, err := actor.CreateChild(context.Background(), sys, sup, ResetCoordinatorProps(0), "reset", testTimeout)
	require.NoError(t, err)

	coordinator.Tell(domain.Reset{}, coordinator)
	coordinator.Tell(domain.Reseted{}, nil)
	expectNothing(t, sink, 100*time.Millisecond)

	// Without a requester the siblings are still reset.
	coordinator.Tell(domain.Reset{}, nil)
	assert.Equal(t, domain.Reset{}, receive(t, sink).Message)
}

func TestResetCoordinator_ResetsTheIDPipeline(t *testing.T) {
	sys := newTestSystem(t)
	sup := spawn(t, sys, actor.SupervisorProps(actor.DefaultStrategy()), "frontend")
	create := func(props actor.Props, name string) actor.Ref {
		ref, err := actor.CreateChild(context.Background(), sys, sup, props, name, testTimeout)
		require.NoError(t, err)
		return ref
	}

	alloc := spawn(t, sys, AllocatorProps(AllocatorConfig{}), "allocator")
	proxy := create(ProxyProps(ProxyConfig{Service: domain.ServiceIDGenerator}), "id-proxy")
	proxy.Tell(registration(domain.ServiceIDGenerator, alloc.Address()), nil)
	cache := create(IDCacheProps(IDCacheConfig{Capacity: 4, Generator: proxy}), "ids")
	coordinator := create(ResetCoordinatorProps(0), "reset")

	for i := range 6 {
		require.Equal(t, strconv.Itoa(i), nextID(t, sys, cache))
	}

	assert.Equal(t, domain.Reseted{}, ask(t, sys, coordinator, domain.Reset{}))
	require.Eventually(t, func() bool {
		st := cacheStatus(t, sys, cache)
		return st.Generation == 1 && st.Remaining == 4
	}, testTimeout, 10*time.Millisecond)
	assert.Equal(t, "0", nextID(t, sys, cache))
}
