package actor

import (
	"errors"
	"fmt"
)

// Fault classes understood by DefaultDecider. Units wrap them with %w.
var (
	ErrTransient        = errors.New("actor: transient fault")
	ErrMissingReference = errors.New("actor: missing reference")
	ErrInvalidArgument  = errors.New("actor: invalid argument")
)

var (
	ErrNameTaken     = errors.New("actor: name already taken")
	ErrAskTimeout    = errors.New("actor: ask timed out")
	ErrSystemStopped = errors.New("actor: system stopped")
	ErrInboxClosed   = errors.New("actor: inbox closed")
)

// PanicError is the fault recorded when Receive or a lifecycle hook panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("actor: panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error (runtime errors
// included) so deciders can classify it with errors.Is and errors.As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
