package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
	"github.com/yndnr/idmesh-go/pkg/cmap"
)

// GuardianPath is the parent of every unit created with System.Spawn.
const GuardianPath = "/user"

// TempPath is the parent of Inbox paths.
const TempPath = "/temp"

// receiver is anything registered under a path.
type receiver interface {
	deliver(env Envelope) bool
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger units derive theirs from.
func WithLogger(l logger.Logger) Option {
	return func(s *System) { s.log = l }
}

// WithClock sets the clock used for scheduling and fault budgets.
func WithClock(c clock.Clock) Option {
	return func(s *System) { s.clock = c }
}

// WithRemote makes the system reachable as host and sends messages for
// other hosts through t.
func WithRemote(host string, t Transport) Option {
	return func(s *System) {
		s.host = host
		s.transport = t
	}
}

// WithMetrics records unit metrics into r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *System) { s.metrics = r }
}

// WithStrategy sets the strategy the guardian applies to top-level units.
func WithStrategy(st *Strategy) Option {
	return func(s *System) { s.strategy = st }
}

// System owns the unit tree, the path registry and dead letters.
type System struct {
	name      string
	host      string
	transport Transport
	log       logger.Logger
	clock     clock.Clock
	metrics   *metric.Registry
	strategy  *Strategy

	registry *cmap.Map[string, receiver]

	guardian *process
	seq      atomic.Uint64
	stopping atomic.Bool

	failOnce sync.Once
	failed   chan struct{}
	err      atomic.Pointer[error]
}

// NewSystem creates a system and starts its /user guardian.
func NewSystem(name string, opts ...Option) *System {
	s := &System{
		name:     name,
		log:      logger.Default(),
		clock:    clock.New(),
		strategy: DefaultStrategy(),
		registry: cmap.New[string, receiver](),
		failed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("system", name)

	props := Props{
		Producer: func() Actor { return guardian{} },
		Strategy: s.strategy,
	}
	s.guardian = newProcess(s, nil, props, "user", Address{Host: s.host, Path: GuardianPath})
	s.register(GuardianPath, s.guardian)
	go s.guardian.run()
	return s
}

// guardian is the root unit. It handles no messages itself.
type guardian struct{}

func (guardian) Receive(ctx *Context) error {
	ctx.Unhandled()
	return nil
}

// Name returns the system name.
func (s *System) Name() string { return s.name }

// Host returns the host the system is reachable as, empty when local-only.
func (s *System) Host() string { return s.host }

// Clock returns the system clock.
func (s *System) Clock() clock.Clock { return s.clock }

// Logger returns the system logger.
func (s *System) Logger() logger.Logger { return s.log }

// Guardian returns the /user guardian.
func (s *System) Guardian() Ref { return s.guardian.ref }

// Spawn creates a top-level unit under /user.
func (s *System) Spawn(props Props, name string) (Ref, error) {
	if s.stopping.Load() {
		return nil, ErrSystemStopped
	}
	child, err := s.guardian.spawnChild(props, name)
	if err != nil {
		return nil, err
	}
	return child.ref, nil
}

// Stop asks the unit behind ref to stop. Non-local refs are ignored.
func (s *System) Stop(ref Ref) {
	if r, ok := ref.(*localRef); ok {
		r.proc.mb.postSystem(stopSignal{})
		return
	}
	if r, ok := ref.(*pathRef); ok {
		if p, ok := s.lookup(r.addr.Path).(*process); ok {
			p.mb.postSystem(stopSignal{})
		}
	}
}

// Lookup returns the unit currently registered at path.
func (s *System) Lookup(path string) (Ref, bool) {
	switch r := s.lookup(path).(type) {
	case *process:
		return r.ref, true
	case *Inbox:
		return r.ref, true
	}
	return nil, false
}

// Resolve returns a handle for addr. Local paths are looked up on each
// send; other hosts go through the Transport.
func (s *System) Resolve(addr Address) Ref {
	if addr.Host == "" || addr.Host == s.host {
		return &pathRef{sys: s, addr: Address{Host: s.host, Path: addr.Path}}
	}
	return &remoteRef{sys: s, addr: addr}
}

// Address returns the host-qualified address of a local path.
func (s *System) Address(path string) Address {
	return Address{Host: s.host, Path: path}
}

// Deliver hands a message received from another host to the unit at path.
func (s *System) Deliver(path string, msg any, sender Address) {
	var from Ref
	if !sender.IsZero() {
		from = s.Resolve(sender)
	}
	s.deliverPath(Address{Host: s.host, Path: path}, Envelope{Message: msg, Sender: from})
}

// ScheduleOnce sends msg to to after d on the system clock.
func (s *System) ScheduleOnce(d time.Duration, to Ref, msg any, sender Ref) *clock.Timer {
	return s.clock.AfterFunc(d, func() { to.Tell(msg, sender) })
}

// Units returns the number of registered paths.
func (s *System) Units() int {
	return s.registry.Count()
}

// Failed is closed when a fault reached the guardian.
func (s *System) Failed() <-chan struct{} { return s.failed }

// Err returns the fault that failed the system, if any.
func (s *System) Err() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Shutdown stops every unit and waits for them, or for ctx.
func (s *System) Shutdown(ctx context.Context) error {
	s.stopping.Store(true)
	s.guardian.mb.postSystem(stopSignal{})
	select {
	case <-s.guardian.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("actor system %s shutdown: %w", s.name, ctx.Err())
	}
}

func (s *System) fail(at Address, err error) {
	s.failOnce.Do(func() {
		s.err.Store(&err)
		s.log.Error("fault reached the guardian, system failed", "at", at.Path, "error", err)
		close(s.failed)
	})
}

func (s *System) register(path string, r receiver) bool {
	return s.registry.SetIfAbsent(path, r)
}

func (s *System) unregister(path string, r receiver) {
	s.registry.DeleteIf(path, func(cur receiver) bool { return cur == r })
}

func (s *System) lookup(path string) receiver {
	r, _ := s.registry.Get(path)
	return r
}

func (s *System) deliverPath(to Address, env Envelope) {
	r := s.lookup(to.Path)
	if r == nil || !r.deliver(env) {
		s.deadLetter(to, env)
	}
}

func (s *System) sendRemote(to Address, env Envelope) {
	if s.transport == nil {
		s.deadLetter(to, env)
		return
	}
	var from Address
	if env.Sender != nil {
		from = env.Sender.Address()
	}
	if err := s.transport.Send(to, env.Message, from); err != nil {
		s.log.Warn("remote send failed", "to", to.String(), "error", err)
		s.deadLetter(to, env)
	}
}

// deadLetter records an undeliverable message. An Identify is still
// answered, with an empty Identity, so the asker learns nobody is there.
func (s *System) deadLetter(to Address, env Envelope) {
	if s.metrics != nil {
		s.metrics.DeadLetters.Inc()
	}
	s.log.Debug("dead letter", "to", to.String(), "message", fmt.Sprintf("%T", env.Message))

	if id, ok := env.Message.(Identify); ok && env.Sender != nil {
		env.Sender.Tell(Identity{Token: id.Token}, nil)
	}
}
