package httpserver

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/yndnr/idmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Accounts handler.Accounts
	Cluster  handler.Cluster
	Ready    func() error

	// Metrics backs /metrics and the request metrics. Optional.
	Metrics *metric.Registry
	Logger  logger.Logger

	// RateLimit is requests per second per client IP on the account
	// routes. Zero disables limiting.
	RateLimit float64
	Burst     int

	// AdminAllowList restricts /admin/v1/* (empty = no restriction).
	AdminAllowList []string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.With("component", "http")

	h := handler.New(handler.Config{
		Accounts: cfg.Accounts,
		Cluster:  cfg.Cluster,
		Ready:    cfg.Ready,
		Logger:   log,
	})

	mux := http.NewServeMux()

	// Order: RequestID -> Recover -> Audit -> extra -> Handler
	handle := func(pattern string, next http.Handler, extra ...Middleware) {
		mws := append([]Middleware{RequestID(), Recover(log), Audit(log, cfg.Metrics, pattern)}, extra...)
		mux.Handle(pattern, Chain(next, mws...))
	}

	handle("GET /health", h)
	handle("GET /ready", h)
	if cfg.Metrics != nil {
		handle("GET /metrics", cfg.Metrics.Handler())
	}

	var business []Middleware
	if cfg.RateLimit > 0 {
		business = append(business, RateLimit(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1)))
	}
	handle("POST /accounts", h, business...)
	handle("GET /ids/next", h, business...)

	admin := NetworkACL(cfg.AdminAllowList, log)
	handle("POST /admin/v1/reset", h, admin)
	handle("GET /admin/v1/cluster/nodes", h, admin)

	return mux
}
