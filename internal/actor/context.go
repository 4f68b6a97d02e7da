package actor

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// Context is a unit's view of the message being processed. It is only
// valid inside Receive and the lifecycle hooks.
type Context struct {
	proc *process
	env  Envelope
}

// Self returns the unit's own handle.
func (c *Context) Self() Ref { return c.proc.ref }

// Sender returns the sender of the current message, or nil.
func (c *Context) Sender() Ref { return c.env.Sender }

// Message returns the current message. It is nil inside lifecycle hooks.
func (c *Context) Message() any { return c.env.Message }

// Envelope returns the current message together with its sender.
func (c *Context) Envelope() Envelope { return c.env }

// System returns the owning system.
func (c *Context) System() *System { return c.proc.sys }

// Logger returns a logger tagged with the unit path.
func (c *Context) Logger() logger.Logger { return c.proc.log }

// Clock returns the system clock.
func (c *Context) Clock() clock.Clock { return c.proc.sys.clock }

// Parent returns the parent's handle. The guardian has none.
func (c *Context) Parent() Ref {
	if c.proc.parent == nil {
		return nil
	}
	return c.proc.parent.ref
}

// Children returns the unit's children sorted by name.
func (c *Context) Children() []Ref { return c.proc.childRefs() }

// Child returns the named child.
func (c *Context) Child(name string) (Ref, bool) {
	p, ok := c.proc.child(name)
	if !ok {
		return nil, false
	}
	return p.ref, true
}

// Siblings returns every child of the parent, this unit included,
// sorted by name.
func (c *Context) Siblings() []Ref {
	if c.proc.parent == nil {
		return []Ref{c.proc.ref}
	}
	return c.proc.parent.childRefs()
}

// Spawn creates a child. An empty name picks a unique one.
func (c *Context) Spawn(props Props, name string) (Ref, error) {
	child, err := c.proc.spawnChild(props, name)
	if err != nil {
		return nil, err
	}
	return child.ref, nil
}

// Stop asks ref to stop. Stopping self takes effect after the current message.
func (c *Context) Stop(ref Ref) { c.proc.sys.Stop(ref) }

// Reply sends msg to the sender with this unit as sender. Without a
// sender the reply is dropped.
func (c *Context) Reply(msg any) {
	if c.env.Sender == nil {
		c.proc.log.Debug("reply without sender dropped", "message", fmt.Sprintf("%T", msg))
		return
	}
	c.env.Sender.Tell(msg, c.proc.ref)
}

// Forward sends the current message to to, keeping the original sender.
func (c *Context) Forward(to Ref) {
	to.Tell(c.env.Message, c.env.Sender)
}

// Resolve returns a handle for addr.
func (c *Context) Resolve(addr Address) Ref { return c.proc.sys.Resolve(addr) }

// ScheduleOnce sends msg to to after d, with this unit as sender.
func (c *Context) ScheduleOnce(d time.Duration, to Ref, msg any) *clock.Timer {
	return c.proc.sys.ScheduleOnce(d, to, msg, c.proc.ref)
}

// Unhandled records that the current message was ignored.
func (c *Context) Unhandled() {
	c.proc.log.Debug("unhandled message", "message", fmt.Sprintf("%T", c.env.Message))
}
