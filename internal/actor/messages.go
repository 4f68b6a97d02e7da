package actor

// Envelope pairs a message with its sender. Sender is nil when there is none.
type Envelope struct {
	Message any
	Sender  Ref
}

// Identify asks any path for its address. The runtime answers it for
// every unit without involving the unit itself.
type Identify struct {
	Token string
}

// Identity answers Identify. Address is zero when nothing lives at the
// queried path.
type Identity struct {
	Token   string
	Address Address
}

// Broadcast is delivered to every routee of a pool. A unit that is not a
// pool receives Message directly.
type Broadcast struct {
	Message any
}

// system lane messages
type (
	stopSignal  struct{}
	childFailed struct {
		child string
		err   error
	}
)
