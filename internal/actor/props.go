package actor

// Actor is a unit's behavior. Receive handles one message at a time; a
// returned error or a panic is a fault handled by the parent's Strategy.
type Actor interface {
	Receive(ctx *Context) error
}

// PreStarter is implemented by units that initialize state when an
// incarnation starts. A returned error is a fault.
type PreStarter interface {
	PreStart(ctx *Context) error
}

// PostStopper is implemented by units that release resources when an
// incarnation ends, on restart as well as on stop.
type PostStopper interface {
	PostStop(ctx *Context)
}

// ReceiveFunc adapts a function to Actor.
type ReceiveFunc func(ctx *Context) error

func (f ReceiveFunc) Receive(ctx *Context) error { return f(ctx) }

// Props is the creation spec of a unit.
type Props struct {
	// Producer returns a fresh instance. It is called once per incarnation.
	Producer func() Actor
	// Routees turns the unit into a round-robin pool of that many
	// instances when positive.
	Routees int
	// Strategy supervises this unit's children. Nil means DefaultStrategy.
	Strategy *Strategy
}

// PropsOf returns Props for producer.
func PropsOf(producer func() Actor) Props {
	return Props{Producer: producer}
}

// WithRoutees returns a copy of p deployed as a pool of n routees.
func (p Props) WithRoutees(n int) Props {
	p.Routees = n
	return p
}

// WithStrategy returns a copy of p supervising its children with s.
func (p Props) WithStrategy(s *Strategy) Props {
	p.Strategy = s
	return p
}
