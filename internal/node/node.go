package node

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/infra/confloader"
	"github.com/yndnr/idmesh-go/internal/infra/shutdown"
	"github.com/yndnr/idmesh-go/internal/server/clusterserver"
	"github.com/yndnr/idmesh-go/internal/server/config"
	"github.com/yndnr/idmesh-go/internal/server/localserver"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// leaveTimeout bounds the graceful gossip leave on stop.
const leaveTimeout = 5 * time.Second

// ConfigSource is where a node's configuration came from. Path is
// empty when the node runs on defaults and environment only. Overrides
// are the command-line settings applied over the file and environment.
type ConfigSource struct {
	Path      string
	Overrides map[string]any
}

// Reload loads the configuration again from the same sources.
func (s ConfigSource) Reload() (*config.NodeConfig, error) {
	opts := []confloader.Option{confloader.WithOverrides(s.Overrides)}
	if s.Path != "" {
		opts = append(opts, confloader.WithConfigFile(s.Path))
	}
	cfg := config.Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Options returns the fx options of a node playing cfg.Node.Role.
// Failures of the actor system are reported to sd.
func Options(cfg *config.NodeConfig, src ConfigSource, log logger.Logger, sd *shutdown.Handler) fx.Option {
	role := Backend
	if cfg.Node.Role == config.RoleFrontend {
		role = Frontend
	}
	return fx.Options(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.SlogLogger{Logger: log.Slog()}
			l.UseLogLevel(slog.LevelDebug)
			return l
		}),
		fx.Supply(cfg, src, sd),
		fx.Provide(func() logger.Logger { return log }),
		Core,
		role,
	)
}

// Core provides the runtime shared by both roles: metrics, the actor
// system and its transport, the cluster server and gossip discovery.
var Core = fx.Module("core",
	fx.Provide(
		metric.NewRegistry,
		newTransport,
		newSystem,
		newClusterServer,
		newDiscovery,
	),
	fx.Invoke(joinCluster, serveConsole, watchSystem, watchConfig),
)

func newTransport(cfg *config.NodeConfig, log logger.Logger, metrics *metric.Registry) *clusterserver.Transport {
	return clusterserver.NewTransport(clusterserver.TransportConfig{
		RequestTimeout: cfg.Cluster.RequestTimeout,
		Logger:         log,
		Metrics:        metrics,
	})
}

func newSystem(
	lc fx.Lifecycle,
	cfg *config.NodeConfig,
	log logger.Logger,
	metrics *metric.Registry,
	transport *clusterserver.Transport,
) (*actor.System, error) {
	sys := actor.NewSystem(cfg.Node.Role,
		actor.WithLogger(log),
		actor.WithRemote(cfg.Cluster.RemoteHost(), transport),
		actor.WithMetrics(metrics),
		actor.WithStrategy(strategy(cfg)),
	)
	transport.Bind(sys)

	if err := metrics.Register(metric.NewCollector(sys)); err != nil {
		_ = sys.Shutdown(context.Background())
		return nil, fmt.Errorf("register unit collector: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return multierr.Append(sys.Shutdown(ctx), transport.Close())
		},
	})
	return sys, nil
}

// strategy is the supervision policy of every supervisor on the node.
func strategy(cfg *config.NodeConfig) *actor.Strategy {
	return &actor.Strategy{
		Decider:   actor.DefaultDecider,
		MaxFaults: cfg.Supervisor.MaxFaults,
		Window:    cfg.Supervisor.Window,
	}
}

// creationTimeout bounds the creation of each unit through a supervisor.
func creationTimeout(cfg *config.NodeConfig) time.Duration {
	if cfg.Frontend.CreationTimeout > 0 {
		return cfg.Frontend.CreationTimeout
	}
	return config.DefaultCreationTimeout
}

func newClusterServer(cfg *config.NodeConfig, sys *actor.System, metrics *metric.Registry, log logger.Logger) *clusterserver.Server {
	h := clusterserver.NewHandler(sys, nil, metrics, log)
	return clusterserver.New(cfg.Cluster.RemoteAddr, h, log)
}

func newDiscovery(cfg *config.NodeConfig, log logger.Logger) (*clusterserver.Discovery, error) {
	dc, err := config.ToDiscoveryConfig(cfg, log)
	if err != nil {
		return nil, err
	}
	return clusterserver.NewDiscovery(dc)
}

// joinCluster makes the node reachable and then visible. Units are
// created while fx builds the graph, so by the time gossip announces
// this node every unit a peer may address already exists.
func joinCluster(lc fx.Lifecycle, srv *clusterserver.Server, d *clusterserver.Discovery, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := srv.Start(); err != nil {
				return err
			}
			if err := d.Start(); err != nil {
				return multierr.Append(err, srv.Shutdown(context.Background()))
			}
			log.Info("node joined", "node", d.Local().Name, "uid", d.Local().UID, "address", d.Local().Address)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := d.Leave(leaveTimeout)
			err = multierr.Append(err, d.Shutdown())
			return multierr.Append(err, srv.Shutdown(ctx))
		},
	})
}

// serveConsole opens the local console when node.admin_socket is set.
func serveConsole(lc fx.Lifecycle, cfg *config.NodeConfig, sys *actor.System, d *clusterserver.Discovery, sd *shutdown.Handler, log logger.Logger) {
	if cfg.Node.AdminSocket == "" {
		return
	}
	hc := localserver.HandlerConfig{
		Role:    cfg.Node.Role,
		Name:    d.Local().Name,
		Units:   sys,
		Members: d,
	}
	if sd != nil {
		hc.Shutdown = sd
	}
	srv := localserver.New(cfg.Node.AdminSocket, localserver.NewHandler(hc), log)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return srv.Start() },
		OnStop:  srv.Shutdown,
	})
}

// watchSystem turns a fault that reached the guardian into a process
// shutdown.
func watchSystem(lc fx.Lifecycle, sys *actor.System, sd *shutdown.Handler) {
	if sd == nil {
		return
	}
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				select {
				case <-sys.Failed():
					sd.Trigger(fmt.Sprintf("actor system failed: %v", sys.Err()))
				case <-stop:
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			return nil
		},
	})
}

// watchConfig reloads the log level when the configuration file changes.
// Every other setting needs a restart.
func watchConfig(lc fx.Lifecycle, src ConfigSource, log logger.Logger) error {
	if src.Path == "" {
		return nil
	}
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := w.Watch(src.Path); err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch %s: %w", src.Path, err)
	}
	w.OnChange(func(string) { reloadLogLevel(src, log) })

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w.StartAsync()
			return nil
		},
		OnStop: func(context.Context) error {
			return w.Stop()
		},
	})
	return nil
}

func reloadLogLevel(src ConfigSource, log logger.Logger) {
	cfg, err := src.Reload()
	if err != nil {
		log.Warn("config reload failed", "path", src.Path, "error", err)
		return
	}
	if err := config.Verify(cfg); err != nil {
		log.Warn("reloaded config is invalid", "path", src.Path, "error", err)
		return
	}
	if cfg.Log.Level != logger.GetLevel() {
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level changed", "level", cfg.Log.Level)
	}
}
