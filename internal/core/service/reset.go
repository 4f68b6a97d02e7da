package service

import (
	"time"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
)

// DefaultResetDelay is how long a ResetCoordinator waits before
// acknowledging.
const DefaultResetDelay = 5 * time.Second

// ResetCoordinator resets every sibling unit. The acknowledgment is
// timer based: Reseted goes back to the requester after Delay whether
// or not the siblings are done.
type ResetCoordinator struct {
	delay time.Duration
}

// NewResetCoordinator returns a coordinator acknowledging after delay.
// A negative delay means DefaultResetDelay.
func NewResetCoordinator(delay time.Duration) *ResetCoordinator {
	if delay < 0 {
		delay = DefaultResetDelay
	}
	return &ResetCoordinator{delay: delay}
}

// ResetCoordinatorProps returns Props for a ResetCoordinator.
func ResetCoordinatorProps(delay time.Duration) actor.Props {
	return actor.PropsOf(func() actor.Actor { return NewResetCoordinator(delay) })
}

func (r *ResetCoordinator) Receive(ctx *actor.Context) error {
	switch ctx.Message().(type) {
	case domain.Reset:
		r.reset(ctx)
	case domain.Reseted:
		// Acknowledgments from siblings are not awaited.
	default:
		ctx.Unhandled()
	}
	return nil
}

func (r *ResetCoordinator) reset(ctx *actor.Context) {
	requester := ctx.Sender()
	self := ctx.Self()
	if requester != nil && actor.SameRef(requester, self) {
		return
	}

	n := 0
	for _, sibling := range ctx.Siblings() {
		if actor.SameRef(sibling, self) {
			continue
		}
		sibling.Tell(actor.Broadcast{Message: domain.Reset{}}, self)
		n++
	}
	ctx.Logger().Info("reset broadcast", "siblings", n, "ack_after", r.delay.String())

	if requester == nil {
		return
	}
	ctx.ScheduleOnce(r.delay, requester, domain.Reseted{})
}
