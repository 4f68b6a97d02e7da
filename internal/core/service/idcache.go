package service

import (
	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// IDCacheConfig configures an IDCache.
type IDCacheConfig struct {
	// Capacity is the most IDs the cache holds.
	Capacity int
	// Generator answers IdsRequest, usually through a Proxy.
	Generator actor.Ref
	Metrics   *metric.Registry
}

// CacheStatus asks an IDCache for a CacheStatusReply.
type CacheStatus struct{}

// CacheStatusReply describes an IDCache.
type CacheStatusReply struct {
	Remaining  int
	InFlight   int
	Pending    int
	Generation uint64
	Ready      bool
}

type cacheState int

const (
	// cachePending holds IdRequests until a range arrives.
	cachePending cacheState = iota
	cacheReady
)

// IDCache serves single IDs from a prefetched FIFO and tops it up to
// Capacity once it falls below half full.
//
// Every IdsRequest carries the cache's generation, which Reset bumps;
// a reply of another generation is discarded, so ranges requested
// before a reset never reach the queue after it.
type IDCache struct {
	cfg        IDCacheConfig
	state      cacheState
	queue      []string
	inFlight   int
	generation uint64
	pending    *actor.Backlog
}

// NewIDCache returns an empty, pending cache.
func NewIDCache(cfg IDCacheConfig) *IDCache {
	return &IDCache{cfg: cfg, pending: actor.NewBacklog(0)}
}

// IDCacheProps returns Props creating a fresh IDCache per incarnation.
func IDCacheProps(cfg IDCacheConfig) actor.Props {
	return actor.PropsOf(func() actor.Actor { return NewIDCache(cfg) })
}

func (c *IDCache) PreStart(ctx *actor.Context) error {
	if c.cfg.Generator == nil {
		return actor.ErrMissingReference
	}
	if c.cfg.Capacity <= 0 {
		return actor.ErrInvalidArgument
	}
	c.request(ctx, c.cfg.Capacity)
	return nil
}

func (c *IDCache) PostStop(ctx *actor.Context) {
	if c.cfg.Metrics != nil && c.pending.Len() > 0 {
		c.cfg.Metrics.PendingRequests.Sub(float64(c.pending.Len()))
	}
}

func (c *IDCache) Receive(ctx *actor.Context) error {
	switch m := ctx.Message().(type) {
	case domain.IdRequest:
		switch c.state {
		case cachePending:
			c.hold(ctx)
		case cacheReady:
			c.serve(ctx, ctx.Sender())
		}
	case domain.IdsResponse:
		c.fill(ctx, m)
	case domain.Reset:
		c.reset(ctx)
	case CacheStatus:
		ctx.Reply(CacheStatusReply{
			Remaining:  len(c.queue),
			InFlight:   c.inFlight,
			Pending:    c.pending.Len(),
			Generation: c.generation,
			Ready:      c.state == cacheReady,
		})
	default:
		ctx.Unhandled()
	}
	return nil
}

func (c *IDCache) hold(ctx *actor.Context) {
	c.pending.Push(ctx.Envelope())
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.PendingRequests.Inc()
	}
	c.replenish(ctx)
}

// serve pops the head of the queue for to. The queue must not be empty.
func (c *IDCache) serve(ctx *actor.Context, to actor.Ref) {
	id := c.queue[0]
	c.queue = c.queue[1:]
	if to != nil {
		to.Tell(domain.IdResponse{ID: id}, ctx.Self())
	} else {
		ctx.Logger().Debug("id request without sender", "id", id)
	}
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.IDsServed.Inc()
	}

	if len(c.queue) == 0 {
		c.state = cachePending
	}
	c.replenish(ctx)
}

func (c *IDCache) fill(ctx *actor.Context, resp domain.IdsResponse) {
	if resp.Generation != c.generation {
		ctx.Logger().Debug("stale range discarded", "generation", resp.Generation, "current", c.generation, "ids", len(resp.IDs))
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.StaleReplies.Inc()
		}
		return
	}

	c.inFlight = 0
	ids := resp.IDs
	if room := c.cfg.Capacity - len(c.queue); len(ids) > room {
		ctx.Logger().Warn("range larger than requested, truncated", "ids", len(ids), "room", room)
		ids = ids[:room]
	}
	c.queue = append(c.queue, ids...)
	if len(c.queue) == 0 {
		c.replenish(ctx)
		return
	}

	c.state = cacheReady
	if c.pending.Len() > 0 {
		c.drain(ctx)
	}
	c.replenish(ctx)
}

// drain serves held requests in arrival order until they or the queue
// run out. Requests that find the queue empty are held again.
func (c *IDCache) drain(ctx *actor.Context) {
	held := c.pending.Len()
	c.pending.Replay(func(env actor.Envelope) {
		if len(c.queue) == 0 {
			c.pending.Push(env)
			return
		}
		c.serve(ctx, env.Sender)
	})
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.PendingRequests.Sub(float64(held - c.pending.Len()))
	}
}

func (c *IDCache) reset(ctx *actor.Context) {
	c.queue = nil
	c.inFlight = 0
	c.generation++
	c.state = cachePending
	c.request(ctx, c.cfg.Capacity)
	ctx.Logger().Info("id cache reset", "generation", c.generation)
	ctx.Reply(domain.Reseted{})
}

// replenish requests a top-up once fewer than half of Capacity IDs
// remain, unless a range is already on its way.
func (c *IDCache) replenish(ctx *actor.Context) {
	if c.inFlight > 0 {
		return
	}
	remaining := len(c.queue)
	if remaining*2 < c.cfg.Capacity {
		c.request(ctx, c.cfg.Capacity-remaining)
	}
}

func (c *IDCache) request(ctx *actor.Context, n int) {
	if n <= 0 {
		return
	}
	c.inFlight = n
	c.cfg.Generator.Tell(domain.IdsRequest{Count: n, Generation: c.generation}, ctx.Self())
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.Replenishments.Inc()
	}
	ctx.Logger().Debug("range requested", "count", n, "generation", c.generation)
}
