package actor

// Backlog keeps messages a unit cannot handle yet, in arrival order.
// It is owned by a single unit and not safe for concurrent use.
type Backlog struct {
	items []Envelope
	limit int
}

// NewBacklog returns a backlog holding at most limit messages; 0 means
// unbounded.
func NewBacklog(limit int) *Backlog {
	return &Backlog{limit: limit}
}

// Push appends env. It returns false, keeping the backlog unchanged,
// when the backlog is full.
func (b *Backlog) Push(env Envelope) bool {
	if b.limit > 0 && len(b.items) >= b.limit {
		return false
	}
	b.items = append(b.items, env)
	return true
}

// Len returns the number of held messages.
func (b *Backlog) Len() int { return len(b.items) }

// Replay empties the backlog and calls fn for each message in order.
// Messages pushed by fn land in the now empty backlog.
func (b *Backlog) Replay(fn func(Envelope)) {
	items := b.items
	b.items = nil
	for _, env := range items {
		fn(env)
	}
}
