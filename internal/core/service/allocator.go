package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// WatermarkStore persists the allocator's next unallocated ID.
type WatermarkStore interface {
	LoadWatermark(ctx context.Context) (int64, error)
	SaveWatermark(ctx context.Context, wm int64) error
}

// storeTimeout bounds one watermark load or save.
const storeTimeout = 5 * time.Second

// AllocatorConfig configures an Allocator.
type AllocatorConfig struct {
	// Store persists the watermark. Without one the watermark starts at
	// zero on every incarnation.
	Store   WatermarkStore
	Metrics *metric.Registry
}

// Allocator hands out ranges of IDs. Each IdsRequest for N is answered
// with [watermark, watermark+N) and the watermark advances by N, so
// ranges never overlap until a Reset.
type Allocator struct {
	cfg       AllocatorConfig
	watermark int64
}

// NewAllocator returns an allocator at watermark zero.
func NewAllocator(cfg AllocatorConfig) *Allocator {
	return &Allocator{cfg: cfg}
}

// AllocatorProps returns Props creating a fresh Allocator per incarnation.
func AllocatorProps(cfg AllocatorConfig) actor.Props {
	return actor.PropsOf(func() actor.Actor { return NewAllocator(cfg) })
}

// PreStart loads the persisted watermark.
func (a *Allocator) PreStart(ctx *actor.Context) error {
	if a.cfg.Store != nil {
		c, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		wm, err := a.cfg.Store.LoadWatermark(c)
		if err != nil {
			return fmt.Errorf("%w: %w", actor.ErrMissingReference, err)
		}
		a.watermark = wm
	}
	ctx.Logger().Info("allocator started", "watermark", a.watermark)
	a.observe()
	return nil
}

func (a *Allocator) Receive(ctx *actor.Context) error {
	switch m := ctx.Message().(type) {
	case domain.IdsRequest:
		return a.allocate(ctx, m)
	case domain.Reset:
		if err := a.advance(0); err != nil {
			return err
		}
		ctx.Logger().Info("allocator reset")
		ctx.Reply(domain.Reseted{})
	default:
		ctx.Unhandled()
	}
	return nil
}

func (a *Allocator) allocate(ctx *actor.Context, req domain.IdsRequest) error {
	if req.Count <= 0 {
		ctx.Logger().Warn("dropped range request", "count", req.Count, "error", domain.ErrInvalidCount)
		return nil
	}

	start := a.watermark
	if err := a.advance(start + int64(req.Count)); err != nil {
		return err
	}

	ids := make([]string, req.Count)
	for i := range ids {
		ids[i] = strconv.FormatInt(start+int64(i), 10)
	}
	ctx.Reply(domain.IdsResponse{IDs: ids, Generation: req.Generation})

	if a.cfg.Metrics != nil {
		a.cfg.Metrics.IDsIssued.Add(float64(req.Count))
	}
	ctx.Logger().Debug("range allocated", "start", start, "count", req.Count)
	return nil
}

// advance persists next before making it the watermark, so a reply is
// never sent for a range a restart could hand out again.
func (a *Allocator) advance(next int64) error {
	if a.cfg.Store != nil {
		c, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := a.cfg.Store.SaveWatermark(c, next); err != nil {
			return fmt.Errorf("%w: %w", actor.ErrTransient, err)
		}
	}
	a.watermark = next
	a.observe()
	return nil
}

func (a *Allocator) observe() {
	if a.cfg.Metrics != nil {
		a.cfg.Metrics.Watermark.Set(float64(a.watermark))
	}
}
