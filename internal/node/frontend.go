package node

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/core/service"
	"github.com/yndnr/idmesh-go/internal/server/clusterserver"
	"github.com/yndnr/idmesh-go/internal/server/config"
	"github.com/yndnr/idmesh-go/internal/server/httpserver"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// Unit names under the frontend supervisor.
const (
	idProxyName     = "id-proxy"
	idsName         = "ids"
	resetName       = "reset"
	ledgerProxyName = "ledger-proxy"
	forwarderName   = "ledger"
)

// Frontend creates the frontend unit tree and serves the HTTP API.
//
//	/user/supervisor/id-proxy      proxy to the backend allocator
//	/user/supervisor/ids           pool of ID caches
//	/user/supervisor/reset         reset coordinator
//	/user/supervisor/ledger-proxy  proxy to the backend ledger batcher
//	/user/supervisor/ledger        ledger forwarder
//	/user/frontend                 membership listener
var Frontend = fx.Module("frontend",
	fx.Provide(
		newFrontend,
		newAccountService,
		newHTTPServer,
	),
	fx.Invoke(startHTTPServer),
)

// FrontendUnits are the units of a frontend node.
type FrontendUnits struct {
	Supervisor  actor.Ref
	IDProxy     actor.Ref
	IDs         actor.Ref
	Reset       actor.Ref
	LedgerProxy actor.Ref
	Ledger      actor.Ref
	Listener    actor.Ref
}

type frontendParams struct {
	fx.In

	Config    *config.NodeConfig
	System    *actor.System
	Discovery *clusterserver.Discovery
	Metrics   *metric.Registry
	Logger    logger.Logger
}

func newFrontend(p frontendParams) (*FrontendUnits, error) {
	ctx := context.Background()
	cfg, sys := p.Config, p.System
	timeout := creationTimeout(cfg)

	sup, err := sys.Spawn(actor.SupervisorProps(strategy(cfg)), supervisorName)
	if err != nil {
		return nil, fmt.Errorf("spawn supervisor: %w", err)
	}
	u := &FrontendUnits{Supervisor: sup}

	proxy := func(st domain.ServiceType) actor.Props {
		return service.ProxyProps(service.ProxyConfig{
			Service:    st,
			MaxBacklog: cfg.Proxy.MaxBacklog,
			Metrics:    p.Metrics,
		})
	}

	children := []struct {
		ref   *actor.Ref
		name  string
		props func() actor.Props
	}{
		{&u.IDProxy, idProxyName, func() actor.Props { return proxy(domain.ServiceIDGenerator) }},
		{&u.IDs, idsName, func() actor.Props {
			return service.IDCacheProps(service.IDCacheConfig{
				Capacity:  cfg.Frontend.IDPool,
				Generator: u.IDProxy,
				Metrics:   p.Metrics,
			}).WithRoutees(cfg.Frontend.IDCachePool)
		}},
		{&u.Reset, resetName, func() actor.Props { return service.ResetCoordinatorProps(cfg.Reset.Delay) }},
		{&u.LedgerProxy, ledgerProxyName, func() actor.Props { return proxy(domain.ServiceLedger) }},
		{&u.Ledger, forwarderName, func() actor.Props { return service.LedgerForwarderProps(u.LedgerProxy) }},
	}
	for _, c := range children {
		ref, err := actor.CreateChild(ctx, sys, sup, c.props(), c.name, timeout)
		if err != nil {
			return nil, err
		}
		*c.ref = ref
	}

	u.Listener, err = sys.Spawn(service.ListenerProps(service.ListenerConfig{
		Membership: p.Discovery,
		Proxies:    []actor.Ref{u.IDProxy, u.LedgerProxy},
		Metrics:    p.Metrics,
	}), pathName(domain.FrontendPath))
	if err != nil {
		return nil, fmt.Errorf("spawn listener: %w", err)
	}

	p.Logger.Info("frontend units created",
		"id_caches", cfg.Frontend.IDCachePool,
		"id_pool", cfg.Frontend.IDPool)
	return u, nil
}

func newAccountService(cfg *config.NodeConfig, sys *actor.System, u *FrontendUnits, log logger.Logger) *service.AccountService {
	return service.NewAccountService(sys, service.AccountConfig{
		IDs:        u.IDs,
		Ledger:     u.Ledger,
		Reset:      u.Reset,
		AskTimeout: cfg.Frontend.AskTimeout,
		ResetDelay: cfg.Reset.Delay,
		Logger:     log,
	})
}

type httpParams struct {
	fx.In

	Config    *config.NodeConfig
	System    *actor.System
	Accounts  *service.AccountService
	Discovery *clusterserver.Discovery
	Metrics   *metric.Registry
	Logger    logger.Logger
}

func newHTTPServer(p httpParams) *httpserver.Server {
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Accounts:       p.Accounts,
		Cluster:        p.Discovery,
		Ready:          p.System.Err,
		Metrics:        p.Metrics,
		Logger:         p.Logger,
		RateLimit:      p.Config.HTTP.RateLimit,
		Burst:          p.Config.HTTP.Burst,
		AdminAllowList: p.Config.HTTP.AdminAllowList,
	})
	return httpserver.New(p.Config.HTTP.Addr, router, p.Logger)
}

func startHTTPServer(lc fx.Lifecycle, srv *httpserver.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return srv.Start() },
		OnStop:  srv.Shutdown,
	})
}

// pathName is the name a top-level unit needs to live at path.
func pathName(path string) string {
	return strings.TrimPrefix(path, actor.GuardianPath+"/")
}
