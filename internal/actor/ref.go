package actor

// Ref is a handle messages are sent through. Tell never blocks; a
// message that cannot be delivered goes to dead letters.
type Ref interface {
	Tell(msg any, sender Ref)
	Address() Address
}

// SameRef reports whether a and b address the same path on the same host.
func SameRef(a, b Ref) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Address() == b.Address()
}

// localRef delivers to one incarnation of a local unit. The incarnation
// survives restarts but not a stop.
type localRef struct {
	proc *process
}

func (r *localRef) Tell(msg any, sender Ref) {
	env := Envelope{Message: msg, Sender: sender}
	if !r.proc.mb.post(env) {
		r.proc.sys.deadLetter(r.proc.addr, env)
	}
}

func (r *localRef) Address() Address { return r.proc.addr }

func (r *localRef) String() string { return r.proc.addr.String() }

// pathRef looks its path up in the registry on every send.
type pathRef struct {
	sys  *System
	addr Address
}

func (r *pathRef) Tell(msg any, sender Ref) {
	r.sys.deliverPath(r.addr, Envelope{Message: msg, Sender: sender})
}

func (r *pathRef) Address() Address { return r.addr }

func (r *pathRef) String() string { return r.addr.String() }

// remoteRef hands messages to the system's Transport.
type remoteRef struct {
	sys  *System
	addr Address
}

func (r *remoteRef) Tell(msg any, sender Ref) {
	r.sys.sendRemote(r.addr, Envelope{Message: msg, Sender: sender})
}

func (r *remoteRef) Address() Address { return r.addr }

func (r *remoteRef) String() string { return r.addr.String() }

// Transport carries messages to units on other hosts. Send must not
// block on the network and must preserve order per destination host.
type Transport interface {
	Send(to Address, msg any, sender Address) error
}
