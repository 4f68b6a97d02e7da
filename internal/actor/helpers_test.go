package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

const testTimeout = 2 * time.Second

func newTestSystem(t *testing.T, opts ...Option) *System {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	sys := NewSystem(t.Name(), opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = sys.Shutdown(ctx)
	})
	return sys
}

func ask(t *testing.T, sys *System, to Ref, msg any) any {
	t.Helper()
	reply, err := sys.Ask(context.Background(), to, msg, testTimeout)
	require.NoError(t, err)
	return reply
}

func receive(t *testing.T, in *Inbox) Envelope {
	t.Helper()
	env, err := in.Receive(context.Background(), testTimeout)
	require.NoError(t, err)
	return env
}

func expectNothing(t *testing.T, in *Inbox, wait time.Duration) {
	t.Helper()
	env, err := in.Receive(context.Background(), wait)
	require.ErrorIs(t, err, ErrAskTimeout, "unexpected message %#v", env.Message)
}

// counter is a unit with observable state used across the runtime tests.
type counter struct {
	n int
}

type (
	incr      struct{}
	get       struct{}
	fail      struct{ err error }
	panicWith struct{ fn func() }
	whoAmI    struct{}
)

var errUnclassified = errors.New("unclassified failure")

func (c *counter) Receive(ctx *Context) error {
	switch m := ctx.Message().(type) {
	case incr:
		c.n++
	case get:
		ctx.Reply(c.n)
	case fail:
		return m.err
	case panicWith:
		m.fn()
	case whoAmI:
		ctx.Reply(ctx.Self().Address())
	default:
		ctx.Unhandled()
	}
	return nil
}

func counterProps() Props {
	return PropsOf(func() Actor { return &counter{} })
}
