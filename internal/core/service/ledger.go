package service

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// Ledger batching defaults.
const (
	DefaultLedgerInterval  = 1000 * time.Millisecond
	DefaultLedgerBatchSize = 10
)

// Submitter records a batch of ledger operations.
type Submitter interface {
	Submit(ctx context.Context, ops []domain.LedgerOperation) error
}

// LogSubmitter only logs batches. It is used when no journal is configured.
type LogSubmitter struct {
	Logger logger.Logger
}

// Submit implements Submitter.
func (s LogSubmitter) Submit(_ context.Context, ops []domain.LedgerOperation) error {
	for _, op := range ops {
		s.Logger.Info("ledger operation", "id", op.ID, "kind", op.Kind, "account", op.Account, "amount", op.Amount)
	}
	return nil
}

// LedgerBatcherConfig configures a LedgerBatcher.
type LedgerBatcherConfig struct {
	Submitter Submitter
	Interval  time.Duration
	BatchSize int
	// SubmitTimeout bounds one Submit call. Defaults to Interval.
	SubmitTimeout time.Duration
	Metrics       *metric.Registry
}

type (
	// drainTick starts the next batch.
	drainTick struct{}
	// batchDone reports a finished Submit back to the batcher.
	batchDone struct {
		batch []actor.Envelope
		err   error
	}
)

// LedgerBatcher is the backend end of the ledger service. It queues
// operations and every Interval submits at most BatchSize of them,
// replying a LedgerResult to each operation's sender. Submit runs off
// the unit's goroutine; at most one batch is outstanding.
type LedgerBatcher struct {
	cfg       LedgerBatcherConfig
	queue     []actor.Envelope
	inFlight  bool
	timer     *clock.Timer
	submitCtx context.Context
	cancel    context.CancelFunc
}

// NewLedgerBatcher returns a batcher with an empty queue.
func NewLedgerBatcher(cfg LedgerBatcherConfig) *LedgerBatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultLedgerInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultLedgerBatchSize
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = cfg.Interval
	}
	return &LedgerBatcher{cfg: cfg}
}

// LedgerBatcherProps returns Props creating a fresh LedgerBatcher per incarnation.
func LedgerBatcherProps(cfg LedgerBatcherConfig) actor.Props {
	return actor.PropsOf(func() actor.Actor { return NewLedgerBatcher(cfg) })
}

func (b *LedgerBatcher) PreStart(ctx *actor.Context) error {
	if b.cfg.Submitter == nil {
		return fmt.Errorf("ledger submitter: %w", actor.ErrMissingReference)
	}
	b.submitCtx, b.cancel = context.WithCancel(context.Background())
	b.schedule(ctx)
	return nil
}

func (b *LedgerBatcher) PostStop(ctx *actor.Context) {
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.cancel != nil {
		b.cancel()
	}
	if n := len(b.queue); n > 0 {
		ctx.Logger().Warn("ledger operations dropped on stop", "count", n)
		b.observe(-n)
	}
}

func (b *LedgerBatcher) Receive(ctx *actor.Context) error {
	switch m := ctx.Message().(type) {
	case domain.LedgerOperation:
		b.enqueue(ctx, m)
	case drainTick:
		b.drain(ctx)
		b.schedule(ctx)
	case batchDone:
		b.done(ctx, m)
	default:
		ctx.Unhandled()
	}
	return nil
}

func (b *LedgerBatcher) enqueue(ctx *actor.Context, op domain.LedgerOperation) {
	if err := validateOperation(op); err != nil {
		ctx.Logger().Warn("ledger operation rejected", "id", op.ID, "error", err)
		ctx.Reply(domain.LedgerResult{OperationID: op.ID, Error: err.Error()})
		return
	}
	b.queue = append(b.queue, ctx.Envelope())
	b.observe(1)
}

func (b *LedgerBatcher) drain(ctx *actor.Context) {
	if b.inFlight || len(b.queue) == 0 {
		return
	}
	n := min(len(b.queue), b.cfg.BatchSize)
	batch := b.queue[:n:n]
	b.queue = b.queue[n:]
	b.inFlight = true
	b.observe(-n)

	ops := make([]domain.LedgerOperation, n)
	for i, env := range batch {
		ops[i] = env.Message.(domain.LedgerOperation)
	}

	self := ctx.Self()
	submitCtx := b.submitCtx
	submitter := b.cfg.Submitter
	timeout := b.cfg.SubmitTimeout
	go func() {
		c, cancel := context.WithTimeout(submitCtx, timeout)
		defer cancel()
		self.Tell(batchDone{batch: batch, err: submitter.Submit(c, ops)}, nil)
	}()
}

func (b *LedgerBatcher) done(ctx *actor.Context, m batchDone) {
	b.inFlight = false
	result := "ok"
	if m.err != nil {
		result = "error"
		ctx.Logger().Error("ledger batch failed", "size", len(m.batch), "error", m.err)
	} else {
		ctx.Logger().Debug("ledger batch submitted", "size", len(m.batch))
	}
	if b.cfg.Metrics != nil {
		b.cfg.Metrics.LedgerBatches.WithLabelValues(result).Inc()
	}

	self := ctx.Self()
	for _, env := range m.batch {
		if env.Sender == nil {
			continue
		}
		op := env.Message.(domain.LedgerOperation)
		res := domain.LedgerResult{OperationID: op.ID, OK: m.err == nil}
		if m.err != nil {
			res.Error = m.err.Error()
		}
		env.Sender.Tell(res, self)
	}
}

func (b *LedgerBatcher) schedule(ctx *actor.Context) {
	b.timer = ctx.ScheduleOnce(b.cfg.Interval, ctx.Self(), drainTick{})
}

func (b *LedgerBatcher) observe(delta int) {
	if b.cfg.Metrics != nil {
		b.cfg.Metrics.LedgerQueue.Add(float64(delta))
	}
}

func validateOperation(op domain.LedgerOperation) error {
	switch {
	case op.ID == "":
		return domain.ErrMissingArgument.WithDetails("operation id")
	case op.Account == "":
		return domain.ErrMissingArgument.WithDetails("account")
	case op.Kind != domain.LedgerIssue && op.Kind != domain.LedgerRetire:
		return domain.ErrInvalidArgument.WithDetails("kind " + op.Kind)
	case op.Amount <= 0:
		return domain.ErrInvalidArgument.WithDetails("amount must be positive")
	}
	return nil
}

// LedgerForwarder is the frontend end of the ledger service. It sends
// operations through the ledger proxy and logs the results.
type LedgerForwarder struct {
	ledger actor.Ref
}

// LedgerForwarderProps returns Props for a forwarder sending to ledger.
func LedgerForwarderProps(ledger actor.Ref) actor.Props {
	return actor.PropsOf(func() actor.Actor { return &LedgerForwarder{ledger: ledger} })
}

func (f *LedgerForwarder) Receive(ctx *actor.Context) error {
	switch m := ctx.Message().(type) {
	case domain.LedgerOperation:
		f.ledger.Tell(m, ctx.Self())
	case domain.LedgerResult:
		if m.OK {
			ctx.Logger().Debug("ledger operation recorded", "id", m.OperationID)
		} else {
			ctx.Logger().Warn("ledger operation failed", "id", m.OperationID, "error", m.Error)
		}
	default:
		ctx.Unhandled()
	}
	return nil
}
