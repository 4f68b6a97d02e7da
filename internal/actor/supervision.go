package actor

import (
	"errors"
	"runtime"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Directive is a supervisor's answer to a child fault.
type Directive int

const (
	// Resume keeps the child's state and continues with the next message.
	Resume Directive = iota
	// Restart replaces the child's state with a fresh instance. The
	// mailbox, path and children are kept.
	Restart
	// Stop terminates the child permanently and frees its name.
	Stop
	// Escalate stops the child and fails the supervisor with the same error.
	Escalate
)

func (d Directive) String() string {
	switch d {
	case Resume:
		return "resume"
	case Restart:
		return "restart"
	case Stop:
		return "stop"
	case Escalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// Decider maps a fault to a directive.
type Decider func(err error) Directive

// DefaultDecider classifies faults:
//
//	ErrTransient, integer division by zero          -> Resume
//	ErrMissingReference, nil pointer/map access     -> Restart
//	ErrInvalidArgument                              -> Stop
//	anything else                                   -> Escalate
func DefaultDecider(err error) Directive {
	switch {
	case errors.Is(err, ErrTransient):
		return Resume
	case errors.Is(err, ErrMissingReference):
		return Restart
	case errors.Is(err, ErrInvalidArgument):
		return Stop
	}

	var rerr runtime.Error
	if errors.As(err, &rerr) {
		msg := rerr.Error()
		switch {
		case strings.Contains(msg, "integer divide by zero"):
			return Resume
		case strings.Contains(msg, "nil pointer dereference"), strings.Contains(msg, "nil map"):
			return Restart
		}
	}
	return Escalate
}

// Default fault budget: at most MaxFaults resumed or restarted faults
// per child within Window. The fault after that stops the child.
const (
	DefaultMaxFaults = 10
	DefaultWindow    = time.Minute
)

// Strategy is the one-for-one supervision policy a parent applies to
// each of its children.
type Strategy struct {
	Decider   Decider
	MaxFaults int
	Window    time.Duration
}

// DefaultStrategy returns DefaultDecider with the default fault budget.
func DefaultStrategy() *Strategy {
	return &Strategy{
		Decider:   DefaultDecider,
		MaxFaults: DefaultMaxFaults,
		Window:    DefaultWindow,
	}
}

func (s *Strategy) decide(err error) Directive {
	if s == nil || s.Decider == nil {
		return DefaultDecider(err)
	}
	return s.Decider(err)
}

// newLimiter returns the fault budget for one child. A token refills
// every Window/MaxFaults and the bucket holds MaxFaults tokens.
func (s *Strategy) newLimiter() *rate.Limiter {
	maxFaults, window := DefaultMaxFaults, DefaultWindow
	if s != nil {
		if s.MaxFaults > 0 {
			maxFaults = s.MaxFaults
		}
		if s.Window > 0 {
			window = s.Window
		}
	}
	return rate.NewLimiter(rate.Every(window/time.Duration(maxFaults)), maxFaults)
}
