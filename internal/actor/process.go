package actor

import (
	"fmt"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// process is one unit: its mailbox, the goroutine draining it and the
// current incarnation.
type process struct {
	sys    *System
	parent *process
	props  Props
	name   string
	addr   Address
	ref    *localRef
	log    logger.Logger
	mb     *mailbox
	done   chan struct{}

	// fault budget charged by the parent's Strategy
	limiter *rate.Limiter

	// owned by the run goroutine
	actor Actor
	kind  string

	mu          sync.RWMutex
	children    map[string]*process
	terminating bool
}

func newProcess(sys *System, parent *process, props Props, name string, addr Address) *process {
	p := &process{
		sys:      sys,
		parent:   parent,
		props:    props,
		name:     name,
		addr:     addr,
		log:      sys.log.With("unit", addr.Path),
		mb:       newMailbox(),
		done:     make(chan struct{}),
		children: make(map[string]*process),
	}
	p.ref = &localRef{proc: p}
	if parent != nil {
		p.limiter = parent.props.Strategy.newLimiter()
	}
	return p
}

func (p *process) deliver(env Envelope) bool {
	return p.mb.post(env)
}

func (p *process) isRouter() bool {
	return p.props.Routees > 0
}

func (p *process) produce() Actor {
	if p.isRouter() {
		return &router{size: p.props.Routees, routee: Props{
			Producer: p.props.Producer,
			Strategy: p.props.Strategy,
		}}
	}
	return p.props.Producer()
}

// spawnChild creates, registers and starts a child. An empty name is
// replaced by a generated one.
func (p *process) spawnChild(props Props, name string) (*process, error) {
	if props.Producer == nil {
		return nil, fmt.Errorf("spawn %q: nil producer: %w", name, ErrInvalidArgument)
	}
	if strings.ContainsAny(name, "/ ") {
		return nil, fmt.Errorf("spawn %q: invalid name: %w", name, ErrInvalidArgument)
	}

	p.mu.Lock()
	if p.terminating {
		p.mu.Unlock()
		return nil, fmt.Errorf("spawn %q under %s: %w", name, p.addr.Path, ErrSystemStopped)
	}
	if name == "" {
		name = "$a" + strconv.FormatUint(p.sys.seq.Add(1), 36)
	}
	if _, taken := p.children[name]; taken {
		p.mu.Unlock()
		return nil, fmt.Errorf("spawn %q under %s: %w", name, p.addr.Path, ErrNameTaken)
	}
	child := newProcess(p.sys, p, props, name, p.addr.Child(name))
	if !p.sys.register(child.addr.Path, child) {
		p.mu.Unlock()
		return nil, fmt.Errorf("spawn %q under %s: %w", name, p.addr.Path, ErrNameTaken)
	}
	p.children[name] = child
	p.mu.Unlock()

	go child.run()
	return child, nil
}

func (p *process) removeChild(name string, child *process) {
	p.mu.Lock()
	if p.children[name] == child {
		delete(p.children, name)
	}
	p.mu.Unlock()
}

func (p *process) child(name string) (*process, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.children[name]
	return c, ok
}

// childRefs returns the children sorted by name.
func (p *process) childRefs() []Ref {
	p.mu.RLock()
	names := make([]string, 0, len(p.children))
	for name := range p.children {
		names = append(names, name)
	}
	sort.Strings(names)
	refs := make([]Ref, 0, len(names))
	for _, name := range names {
		refs = append(refs, p.children[name].ref)
	}
	p.mu.RUnlock()
	return refs
}

func (p *process) run() {
	defer close(p.done)

	if err := p.incarnate(); err != nil {
		if p.handleFault(err) {
			return
		}
	}

	for range p.mb.signal {
		for {
			if msg, ok := p.mb.popSystem(); ok {
				if p.handleSystem(msg) {
					return
				}
				continue
			}
			env, ok := p.mb.popUser()
			if !ok {
				break
			}
			if p.invoke(env) {
				return
			}
		}
	}
}

// incarnate replaces the current instance with a fresh one and runs PreStart.
func (p *process) incarnate() error {
	return p.safeCall(func() error {
		p.actor = p.produce()
		if p.actor == nil {
			return fmt.Errorf("producer returned nil: %w", ErrMissingReference)
		}
		p.kind = strings.TrimPrefix(fmt.Sprintf("%T", p.actor), "*")
		if ps, ok := p.actor.(PreStarter); ok {
			return ps.PreStart(&Context{proc: p})
		}
		return nil
	})
}

func (p *process) safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// invoke handles one user message. It returns true once the process
// has stopped.
func (p *process) invoke(env Envelope) bool {
	switch m := env.Message.(type) {
	case Identify:
		if env.Sender != nil {
			env.Sender.Tell(Identity{Token: m.Token, Address: p.addr}, p.ref)
		}
		return false
	case Broadcast:
		if !p.isRouter() {
			env.Message = m.Message
		}
	}

	if p.actor == nil {
		return p.handleFault(fmt.Errorf("no live instance: %w", ErrMissingReference))
	}

	ctx := &Context{proc: p, env: env}
	err := p.safeCall(func() error { return p.actor.Receive(ctx) })
	if m := p.sys.metrics; m != nil {
		m.MessagesProcessed.WithLabelValues(p.kind).Inc()
	}
	if err != nil {
		return p.handleFault(err)
	}
	return false
}

func (p *process) handleSystem(msg any) bool {
	switch m := msg.(type) {
	case stopSignal:
		p.terminate()
		return true
	case childFailed:
		p.log.Warn("child escalated fault", "child", m.child, "error", m.err)
		return p.handleFault(m.err)
	}
	return false
}

// handleFault applies the parent's Strategy to err and returns true if
// the process stopped as a result.
func (p *process) handleFault(err error) bool {
	for {
		if p.parent == nil {
			p.sys.fail(p.addr, err)
			p.terminate()
			return true
		}

		d := p.parent.props.Strategy.decide(err)
		if (d == Resume || d == Restart) && !p.limiter.AllowN(p.sys.clock.Now(), 1) {
			p.log.Warn("fault budget exhausted", "error", err)
			d = Stop
		}
		p.log.Warn("unit fault", "error", err, "directive", d.String())
		if m := p.sys.metrics; m != nil {
			m.Faults.WithLabelValues(d.String()).Inc()
		}

		switch d {
		case Resume:
			return false
		case Restart:
			p.postStop()
			if rerr := p.incarnate(); rerr != nil {
				err = rerr
				continue
			}
			return false
		case Stop:
			p.terminate()
			return true
		default:
			p.terminate()
			p.parent.mb.postSystem(childFailed{child: p.name, err: err})
			return true
		}
	}
}

func (p *process) postStop() {
	ps, ok := p.actor.(PostStopper)
	if !ok {
		return
	}
	err := p.safeCall(func() error {
		ps.PostStop(&Context{proc: p})
		return nil
	})
	if err != nil {
		p.log.Error("post stop failed", "error", err)
	}
}

// terminate stops children first, then releases the path and routes
// whatever is still queued to dead letters.
func (p *process) terminate() {
	rest := p.mb.close()

	p.mu.Lock()
	p.terminating = true
	children := make([]*process, 0, len(p.children))
	for _, c := range p.children {
		children = append(children, c)
	}
	p.mu.Unlock()

	for _, c := range children {
		c.mb.postSystem(stopSignal{})
	}
	for _, c := range children {
		<-c.done
	}

	p.sys.unregister(p.addr.Path, p)
	if p.parent != nil {
		p.parent.removeChild(p.name, p)
	}
	p.postStop()

	for _, env := range rest {
		p.sys.deadLetter(p.addr, env)
	}
	p.log.Debug("unit stopped")
}
