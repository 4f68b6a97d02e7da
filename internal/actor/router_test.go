package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RoundRobin(t *testing.T) {
	sys := newTestSystem(t)
	pool, err := sys.Spawn(counterProps().WithRoutees(4), "pool")
	require.NoError(t, err)

	seen := make(map[string]int)
	for i := 0; i < 8; i++ {
		addr := ask(t, sys, pool, whoAmI{}).(Address)
		seen[addr.Path]++
	}

	assert.Len(t, seen, 4)
	for path, n := range seen {
		assert.Equal(t, 2, n, path)
	}
}

func TestRouter_Broadcast(t *testing.T) {
	sys := newTestSystem(t)
	in := sys.NewInbox()
	defer in.Close()

	pool, err := sys.Spawn(counterProps().WithRoutees(3), "pool")
	require.NoError(t, err)

	pool.Tell(Broadcast{Message: whoAmI{}}, in.Ref())

	paths := make(map[string]bool)
	for i := 0; i < 3; i++ {
		paths[receive(t, in).Message.(Address).Path] = true
	}
	assert.Equal(t, map[string]bool{
		"/user/pool/$1": true,
		"/user/pool/$2": true,
		"/user/pool/$3": true,
	}, paths)
}

func TestRouter_BroadcastToSingleUnitUnwraps(t *testing.T) {
	sys := newTestSystem(t)
	ref, err := sys.Spawn(counterProps(), "single")
	require.NoError(t, err)

	ref.Tell(Broadcast{Message: incr{}}, nil)
	assert.Equal(t, 1, ask(t, sys, ref, get{}))
}

func TestRouter_RouteeRestartIsLocal(t *testing.T) {
	sys := newTestSystem(t)
	pool, err := sys.Spawn(counterProps().WithRoutees(2), "pool")
	require.NoError(t, err)

	r1, ok := sys.Lookup("/user/pool/$1")
	require.True(t, ok)
	r2, ok := sys.Lookup("/user/pool/$2")
	require.True(t, ok)

	r1.Tell(incr{}, nil)
	r2.Tell(incr{}, nil)
	r1.Tell(fail{err: ErrMissingReference}, nil)

	assert.Equal(t, 0, ask(t, sys, r1, get{}))
	assert.Equal(t, 1, ask(t, sys, r2, get{}))

	id := ask(t, sys, pool, Identify{Token: "p"}).(Identity)
	assert.Equal(t, "/user/pool", id.Address.Path)
}

func TestSupervisor_CreateChild(t *testing.T) {
	sys := newTestSystem(t)
	sup, err := sys.Spawn(SupervisorProps(nil), "supervisor")
	require.NoError(t, err)

	ref, err := CreateChild(context.Background(), sys, sup, counterProps(), "idGenerator", testTimeout)
	require.NoError(t, err)
	assert.Equal(t, "/user/supervisor/idGenerator", ref.Address().Path)

	_, err = CreateChild(context.Background(), sys, sup, counterProps(), "idGenerator", testTimeout)
	assert.ErrorIs(t, err, ErrNameTaken)

	reply := ask(t, sys, sup, Create{Props: counterProps()})
	created, ok := reply.(Created)
	require.True(t, ok)
	assert.Contains(t, created.Ref.Address().Path, "/user/supervisor/$")
}
