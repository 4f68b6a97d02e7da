package actor

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Inbox is a temporary path that code outside the system can receive
// replies on. It must be closed to release the path.
type Inbox struct {
	sys  *System
	addr Address
	ref  *inboxRef

	mu     sync.Mutex
	queue  []Envelope
	closed bool
	signal chan struct{}
}

// NewInbox registers a fresh /temp/<ulid> path.
func (s *System) NewInbox() *Inbox {
	in := &Inbox{
		sys:    s,
		addr:   Address{Host: s.host, Path: TempPath + "/" + ulid.Make().String()},
		signal: make(chan struct{}, 1),
	}
	in.ref = &inboxRef{in: in}
	s.register(in.addr.Path, in)
	return in
}

// Ref returns the handle replies should be sent to.
func (in *Inbox) Ref() Ref { return in.ref }

func (in *Inbox) deliver(env Envelope) bool {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return false
	}
	in.queue = append(in.queue, env)
	in.mu.Unlock()
	select {
	case in.signal <- struct{}{}:
	default:
	}
	return true
}

// Receive returns the next message, waiting at most timeout.
func (in *Inbox) Receive(ctx context.Context, timeout time.Duration) (Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		in.mu.Lock()
		if in.closed {
			in.mu.Unlock()
			return Envelope{}, ErrInboxClosed
		}
		if len(in.queue) > 0 {
			env := in.queue[0]
			in.queue = in.queue[1:]
			in.mu.Unlock()
			return env, nil
		}
		in.mu.Unlock()

		select {
		case <-in.signal:
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return Envelope{}, ErrAskTimeout
			}
			return Envelope{}, ctx.Err()
		}
	}
}

// Close unregisters the inbox. Later messages go to dead letters.
func (in *Inbox) Close() {
	in.mu.Lock()
	in.closed = true
	in.queue = nil
	in.mu.Unlock()
	in.sys.unregister(in.addr.Path, in)
}

type inboxRef struct {
	in *Inbox
}

func (r *inboxRef) Tell(msg any, sender Ref) {
	env := Envelope{Message: msg, Sender: sender}
	if !r.in.deliver(env) {
		r.in.sys.deadLetter(r.in.addr, env)
	}
}

func (r *inboxRef) Address() Address { return r.in.addr }

// Ask sends msg to to and waits up to timeout for the first reply.
// It returns ErrAskTimeout when nothing arrives in time.
func (s *System) Ask(ctx context.Context, to Ref, msg any, timeout time.Duration) (any, error) {
	in := s.NewInbox()
	defer in.Close()

	to.Tell(msg, in.Ref())
	env, err := in.Receive(ctx, timeout)
	if err != nil {
		return nil, err
	}
	return env.Message, nil
}
