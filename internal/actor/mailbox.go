package actor

import "sync"

// mailbox is an unbounded two-lane FIFO. System messages (stop, child
// failure) are always taken before user messages.
type mailbox struct {
	mu     sync.Mutex
	system []any
	user   []Envelope
	closed bool
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// post appends a user message. It returns false once the mailbox is closed.
func (m *mailbox) post(env Envelope) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.user = append(m.user, env)
	m.mu.Unlock()
	m.notify()
	return true
}

// postSystem appends a system message. System messages are accepted
// until the owning process has fully stopped.
func (m *mailbox) postSystem(msg any) {
	m.mu.Lock()
	m.system = append(m.system, msg)
	m.mu.Unlock()
	m.notify()
}

func (m *mailbox) notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) popSystem() (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.system) == 0 {
		return nil, false
	}
	msg := m.system[0]
	m.system[0] = nil
	m.system = m.system[1:]
	return msg, true
}

func (m *mailbox) popUser() (Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.user) == 0 {
		return Envelope{}, false
	}
	env := m.user[0]
	m.user[0] = Envelope{}
	m.user = m.user[1:]
	return env, true
}

// close rejects further user messages and returns the ones still queued.
func (m *mailbox) close() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	rest := m.user
	m.user = nil
	return rest
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.user)
}
