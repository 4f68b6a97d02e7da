package actor

import (
	"context"
	"fmt"
	"time"
)

// Create asks a Supervisor for a child with a generated name.
type Create struct {
	Props Props
}

// NamedCreate asks a Supervisor for a child with the given name.
type NamedCreate struct {
	Props Props
	Name  string
}

// Created answers a successful Create or NamedCreate.
type Created struct {
	Ref Ref
}

// CreateFailed answers a Create or NamedCreate that could not be honored.
type CreateFailed struct {
	Name string
	Err  error
}

// Supervisor creates children on request and supervises them with its
// Props' Strategy. Every other message is ignored.
type Supervisor struct{}

// SupervisorProps returns Props for a Supervisor applying s to its children.
func SupervisorProps(s *Strategy) Props {
	return Props{
		Producer: func() Actor { return &Supervisor{} },
		Strategy: s,
	}
}

func (s *Supervisor) Receive(ctx *Context) error {
	switch m := ctx.Message().(type) {
	case Create:
		s.create(ctx, m.Props, "")
	case NamedCreate:
		s.create(ctx, m.Props, m.Name)
	default:
		ctx.Unhandled()
	}
	return nil
}

func (s *Supervisor) create(ctx *Context, props Props, name string) {
	ref, err := ctx.Spawn(props, name)
	if err != nil {
		ctx.Logger().Warn("create failed", "name", name, "error", err)
		ctx.Reply(CreateFailed{Name: name, Err: err})
		return
	}
	ctx.Logger().Debug("child created", "child", ref.Address().Path)
	ctx.Reply(Created{Ref: ref})
}

// CreateChild asks sup for a named child and waits up to timeout for it.
func CreateChild(ctx context.Context, sys *System, sup Ref, props Props, name string, timeout time.Duration) (Ref, error) {
	reply, err := sys.Ask(ctx, sup, NamedCreate{Props: props, Name: name}, timeout)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	switch m := reply.(type) {
	case Created:
		return m.Ref, nil
	case CreateFailed:
		return nil, fmt.Errorf("create %q: %w", name, m.Err)
	default:
		return nil, fmt.Errorf("create %q: unexpected reply %T", name, reply)
	}
}
