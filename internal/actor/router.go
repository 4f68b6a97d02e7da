package actor

import "strconv"

// router is the instance behind a pool. Routees are its children
// $1..$n. They survive a router restart because children do.
type router struct {
	size   int
	routee Props
	next   int
}

func (r *router) PreStart(ctx *Context) error {
	for i := 1; i <= r.size; i++ {
		name := "$" + strconv.Itoa(i)
		if _, ok := ctx.Child(name); ok {
			continue
		}
		if _, err := ctx.Spawn(r.routee, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *router) Receive(ctx *Context) error {
	routees := ctx.Children()
	if len(routees) == 0 {
		ctx.System().deadLetter(ctx.Self().Address(), ctx.Envelope())
		return nil
	}

	if b, ok := ctx.Message().(Broadcast); ok {
		for _, rt := range routees {
			rt.Tell(b.Message, ctx.Sender())
		}
		return nil
	}

	rt := routees[r.next%len(routees)]
	r.next++
	ctx.Forward(rt)
	return nil
}
