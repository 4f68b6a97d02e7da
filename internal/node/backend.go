package node

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/core/service"
	"github.com/yndnr/idmesh-go/internal/server/clusterserver"
	"github.com/yndnr/idmesh-go/internal/server/config"
	"github.com/yndnr/idmesh-go/internal/storage"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// Unit names on a backend node. The announcer takes the well-known
// backend path.
const (
	supervisorName = "supervisor"
	allocatorName  = "allocator"
	ledgerName     = "ledger"
)

// Backend creates the backend unit tree: a supervisor holding the range
// allocator and the ledger batcher, and the announcer at
// domain.BackendPath telling every frontend where they are.
var Backend = fx.Module("backend",
	fx.Provide(newBackend),
	fx.Invoke(func(*BackendUnits) {}),
)

// BackendUnits are the units of a backend node.
type BackendUnits struct {
	Supervisor actor.Ref
	Allocator  actor.Ref
	Ledger     actor.Ref
	Announcer  actor.Ref
}

type backendParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.NodeConfig
	System    *actor.System
	Discovery *clusterserver.Discovery
	Metrics   *metric.Registry
	Logger    logger.Logger
}

func newBackend(p backendParams) (*BackendUnits, error) {
	kv, err := storage.NewBadgerEngine(kvConfig(p.Config), p.Logger)
	if err != nil {
		return nil, err
	}
	if err := p.Metrics.Register(kv.Collectors()...); err != nil {
		p.Logger.Warn("storage metrics not registered", "error", err)
	}

	units, err := spawnBackend(context.Background(), p, kv)
	if err != nil {
		return nil, multierr.Append(err, kv.Close())
	}

	// The store outlives every unit writing to it.
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return multierr.Append(p.System.Shutdown(ctx), kv.Close())
		},
	})
	return units, nil
}

func kvConfig(cfg *config.NodeConfig) storage.KVConfig {
	kc := storage.DefaultKVConfig(cfg.Storage.DataDir)
	if cfg.Storage.GCInterval > 0 {
		kc.GCInterval = cfg.Storage.GCInterval.String()
	}
	return kc
}

// allocatorConfig persists the watermark only when there is a data dir.
// Otherwise an allocator restart begins again at zero.
func allocatorConfig(p backendParams, kv storage.KVEngine) service.AllocatorConfig {
	cfg := service.AllocatorConfig{Metrics: p.Metrics}
	if p.Config.Storage.DataDir != "" {
		cfg.Store = storage.NewWatermarkStore(kv)
	}
	return cfg
}

func spawnBackend(ctx context.Context, p backendParams, kv storage.KVEngine) (*BackendUnits, error) {
	sys, timeout := p.System, creationTimeout(p.Config)

	sup, err := sys.Spawn(actor.SupervisorProps(strategy(p.Config)), supervisorName)
	if err != nil {
		return nil, fmt.Errorf("spawn supervisor: %w", err)
	}
	u := &BackendUnits{Supervisor: sup}

	u.Allocator, err = actor.CreateChild(ctx, sys, sup, service.AllocatorProps(allocatorConfig(p, kv)), allocatorName, timeout)
	if err != nil {
		return nil, err
	}

	var submitter service.Submitter = storage.NewLedgerJournal(kv)
	if p.Config.Storage.DataDir == "" {
		submitter = service.LogSubmitter{Logger: p.Logger}
	}
	u.Ledger, err = actor.CreateChild(ctx, sys, sup, service.LedgerBatcherProps(service.LedgerBatcherConfig{
		Submitter: submitter,
		Interval:  p.Config.Ledger.Interval,
		BatchSize: p.Config.Ledger.BatchSize,
		Metrics:   p.Metrics,
	}), ledgerName, timeout)
	if err != nil {
		return nil, err
	}

	u.Announcer, err = sys.Spawn(service.AnnouncerProps(service.AnnouncerConfig{
		Membership: p.Discovery,
		Services: []service.LocalService{
			{Type: domain.ServiceIDGenerator, Path: u.Allocator.Address().Path},
			{Type: domain.ServiceLedger, Path: u.Ledger.Address().Path},
		},
		Metrics: p.Metrics,
	}), pathName(domain.BackendPath))
	if err != nil {
		return nil, fmt.Errorf("spawn announcer: %w", err)
	}

	p.Logger.Info("backend units created",
		"allocator", u.Allocator.Address().String(),
		"ledger", u.Ledger.Address().String(),
		"persistent", p.Config.Storage.DataDir != "")
	return u, nil
}
