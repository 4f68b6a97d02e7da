package clusterserver

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
)

// DeliverRequest is the wire frame of one unit message.
type DeliverRequest struct {
	// To is the destination unit path on the receiving node.
	To string `codec:"to"`
	// Sender is the host-qualified sender address, empty for none.
	Sender string `codec:"sender,omitempty"`
	// Type is the registered name of the payload type.
	Type    string `codec:"type"`
	Payload []byte `codec:"payload"`
	// Broadcast wraps the payload in actor.Broadcast on delivery.
	Broadcast bool `codec:"broadcast,omitempty"`
}

// DeliverResponse acknowledges a DeliverRequest.
type DeliverResponse struct{}

// TypeRegistry maps message types to stable wire names.
type TypeRegistry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// DefaultTypeRegistry returns a registry holding every message that
// travels between backends and frontends.
func DefaultTypeRegistry() *TypeRegistry {
	r := NewTypeRegistry()
	r.MustRegister("actor.Identify", actor.Identify{})
	r.MustRegister("actor.Identity", actor.Identity{})
	r.MustRegister("domain.Registration", domain.Registration{})
	r.MustRegister("domain.IdsRequest", domain.IdsRequest{})
	r.MustRegister("domain.IdsResponse", domain.IdsResponse{})
	r.MustRegister("domain.IdRequest", domain.IdRequest{})
	r.MustRegister("domain.IdResponse", domain.IdResponse{})
	r.MustRegister("domain.Reset", domain.Reset{})
	r.MustRegister("domain.Reseted", domain.Reseted{})
	r.MustRegister("domain.LedgerOperation", domain.LedgerOperation{})
	r.MustRegister("domain.LedgerResult", domain.LedgerResult{})
	return r
}

// Register binds name to the dynamic type of sample, which must be a
// non-pointer value.
func (r *TypeRegistry) Register(name string, sample any) error {
	t := reflect.TypeOf(sample)
	if t == nil || t.Kind() == reflect.Pointer {
		return fmt.Errorf("register %q: sample must be a non-pointer value, got %T", name, sample)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byName[name]; ok && prev != t {
		return fmt.Errorf("register %q: name already bound to %s", name, prev)
	}
	if prev, ok := r.byType[t]; ok && prev != name {
		return fmt.Errorf("register %s: type already bound to %q", t, prev)
	}
	r.byName[name] = t
	r.byType[t] = name
	return nil
}

// MustRegister is like Register but panics on error.
func (r *TypeRegistry) MustRegister(name string, sample any) {
	if err := r.Register(name, sample); err != nil {
		panic(err)
	}
}

// Encode builds the frame for msg sent to path to.
func (r *TypeRegistry) Encode(to actor.Address, msg any, sender actor.Address) (*DeliverRequest, error) {
	req := &DeliverRequest{To: to.Path}
	if !sender.IsZero() {
		req.Sender = sender.String()
	}
	if b, ok := msg.(actor.Broadcast); ok {
		req.Broadcast = true
		msg = b.Message
	}

	r.mu.RLock()
	name, ok := r.byType[reflect.TypeOf(msg)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("message type %T is not registered", msg)
	}

	payload, err := encode(msg)
	if err != nil {
		return nil, err
	}
	req.Type = name
	req.Payload = payload
	return req, nil
}

// Decode returns the message carried by req and its sender address.
func (r *TypeRegistry) Decode(req *DeliverRequest) (any, actor.Address, error) {
	var sender actor.Address
	if req.Sender != "" {
		a, err := actor.ParseAddress(req.Sender)
		if err != nil {
			return nil, actor.Address{}, err
		}
		sender = a
	}

	r.mu.RLock()
	t, ok := r.byName[req.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, actor.Address{}, fmt.Errorf("message type %q is not registered", req.Type)
	}

	v := reflect.New(t)
	if err := decode(req.Payload, v.Interface()); err != nil {
		return nil, actor.Address{}, err
	}
	msg := v.Elem().Interface()
	if req.Broadcast {
		msg = actor.Broadcast{Message: msg}
	}
	return msg, sender, nil
}
