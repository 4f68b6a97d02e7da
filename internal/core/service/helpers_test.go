package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/storage"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

const testTimeout = 2 * time.Second

func newTestSystem(t *testing.T, opts ...actor.Option) *actor.System {
	t.Helper()
	opts = append([]actor.Option{actor.WithLogger(logger.Discard())}, opts...)
	sys := actor.NewSystem(t.Name(), opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = sys.Shutdown(ctx)
	})
	return sys
}

func spawn(t *testing.T, sys *actor.System, props actor.Props, name string) actor.Ref {
	t.Helper()
	ref, err := sys.Spawn(props, name)
	require.NoError(t, err)
	return ref
}

func ask(t *testing.T, sys *actor.System, to actor.Ref, msg any) any {
	t.Helper()
	reply, err := sys.Ask(context.Background(), to, msg, testTimeout)
	require.NoError(t, err)
	return reply
}

func receive(t *testing.T, in *actor.Inbox) actor.Envelope {
	t.Helper()
	env, err := in.Receive(context.Background(), testTimeout)
	require.NoError(t, err)
	return env
}

func expectNothing(t *testing.T, in *actor.Inbox, wait time.Duration) {
	t.Helper()
	env, err := in.Receive(context.Background(), wait)
	require.ErrorIs(t, err, actor.ErrAskTimeout, "unexpected message %#v", env.Message)
}

func newMemoryStore(t *testing.T) *storage.BadgerEngine {
	t.Helper()
	kv, err := storage.NewBadgerEngine(storage.DefaultKVConfig(""), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

// relay forwards every message to a fixed ref, keeping the sender. The
// runtime still answers Identify on its behalf.
func relayProps(to actor.Ref) actor.Props {
	return actor.PropsOf(func() actor.Actor {
		return actor.ReceiveFunc(func(ctx *actor.Context) error {
			to.Tell(ctx.Message(), ctx.Sender())
			return nil
		})
	})
}

// tapProps copies every message to sink and forwards it to next with
// the original sender.
func tapProps(next, sink actor.Ref) actor.Props {
	return actor.PropsOf(func() actor.Actor {
		return actor.ReceiveFunc(func(ctx *actor.Context) error {
			sink.Tell(ctx.Message(), nil)
			next.Tell(ctx.Message(), ctx.Sender())
			return nil
		})
	})
}

// inject makes a faulty unit return err.
type inject struct{ err error }

// faulty wraps a unit so tests can raise faults through it.
type faulty struct {
	inner actor.Actor
}

func faultyProps(props actor.Props) actor.Props {
	return actor.PropsOf(func() actor.Actor { return &faulty{inner: props.Producer()} })
}

func (f *faulty) PreStart(ctx *actor.Context) error {
	if ps, ok := f.inner.(actor.PreStarter); ok {
		return ps.PreStart(ctx)
	}
	return nil
}

func (f *faulty) PostStop(ctx *actor.Context) {
	if ps, ok := f.inner.(actor.PostStopper); ok {
		ps.PostStop(ctx)
	}
}

func (f *faulty) Receive(ctx *actor.Context) error {
	if m, ok := ctx.Message().(inject); ok {
		return m.err
	}
	return f.inner.Receive(ctx)
}

// fakeMembership records subscriptions and publishes events by hand.
// Subscribe replays the members set with Join, like the gossip-backed one.
type fakeMembership struct {
	mu           sync.Mutex
	members      []domain.Member
	subs         map[actor.Address]subscription
	unsubscribed int
}

type subscription struct {
	ref    actor.Ref
	filter domain.EventFilter
}

func newFakeMembership(members ...domain.Member) *fakeMembership {
	return &fakeMembership{members: members, subs: make(map[actor.Address]subscription)}
}

func (f *fakeMembership) Subscribe(ref actor.Ref, filter domain.EventFilter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[ref.Address()] = subscription{ref: ref, filter: filter}
	if filter.Has(domain.EventMemberUp) {
		for _, m := range f.members {
			if m.Status == domain.MemberStatusUp {
				ref.Tell(domain.MemberUp{Member: m}, nil)
			}
		}
	}
	if filter.Has(domain.EventMemberUnreachable) {
		for _, m := range f.members {
			if m.Status == domain.MemberStatusUnreachable {
				ref.Tell(domain.MemberUnreachable{Member: m}, nil)
			}
		}
	}
}

func (f *fakeMembership) Unsubscribe(ref actor.Ref) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, ref.Address())
	f.unsubscribed++
}

func (f *fakeMembership) Publish(ev any) {
	var kind domain.EventFilter
	switch ev.(type) {
	case domain.MemberUp:
		kind = domain.EventMemberUp
	case domain.MemberRemoved:
		kind = domain.EventMemberRemoved
	case domain.MemberUnreachable:
		kind = domain.EventMemberUnreachable
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.filter.Has(kind) {
			s.ref.Tell(ev, nil)
		}
	}
}

func (f *fakeMembership) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeMembership) Unsubscribed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}
