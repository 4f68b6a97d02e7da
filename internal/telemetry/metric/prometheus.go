package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace is the Prometheus namespace of every idmesh metric.
const Namespace = "idmesh"

// Registry holds all application metrics.
//
// Each Registry owns its own prometheus.Registry so that several
// actor systems (and tests) can live in one process.
type Registry struct {
	reg *prometheus.Registry

	// Unit runtime metrics
	MessagesProcessed *prometheus.CounterVec
	Faults            *prometheus.CounterVec
	DeadLetters       prometheus.Counter

	// ID pipeline metrics
	IDsIssued       prometheus.Counter
	Watermark       prometheus.Gauge
	IDsServed       prometheus.Counter
	Replenishments  prometheus.Counter
	StaleReplies    prometheus.Counter
	PendingRequests prometheus.Gauge

	// Discovery metrics
	ProxyBacklog       *prometheus.GaugeVec
	ProxyDropped       *prometheus.CounterVec
	ProxyBound         *prometheus.GaugeVec
	Announcements      prometheus.Counter
	MembershipDeparted prometheus.Gauge

	// Transport metrics
	RemoteMessages *prometheus.CounterVec

	// Ledger metrics
	LedgerBatches *prometheus.CounterVec
	LedgerQueue   prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with Go runtime and
// process collectors already registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		MessagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "unit",
			Name:      "messages_processed_total",
			Help:      "Messages processed by units, by unit kind",
		}, []string{"kind"}),
		Faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "unit",
			Name:      "faults_total",
			Help:      "Unit faults by supervision directive",
		}, []string{"directive"}),
		DeadLetters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "unit",
			Name:      "dead_letters_total",
			Help:      "Messages that could not be delivered",
		}),

		IDsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "allocator",
			Name:      "ids_issued_total",
			Help:      "Identifiers issued by the range allocator",
		}),
		Watermark: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "allocator",
			Name:      "watermark",
			Help:      "Next unallocated identifier",
		}),
		IDsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "idcache",
			Name:      "ids_served_total",
			Help:      "Identifiers served to clients by ID caches",
		}),
		Replenishments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "idcache",
			Name:      "replenishments_total",
			Help:      "Range requests issued by ID caches",
		}),
		StaleReplies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "idcache",
			Name:      "stale_replies_total",
			Help:      "Range replies discarded because of a generation mismatch",
		}),
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "idcache",
			Name:      "pending_requests",
			Help:      "Client requests buffered while caches are empty",
		}),

		ProxyBacklog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "proxy",
			Name:      "backlog",
			Help:      "Messages buffered by unbound discovery proxies",
		}, []string{"service"}),
		ProxyDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "proxy",
			Name:      "dropped_total",
			Help:      "Messages dropped because a proxy backlog was full",
		}, []string{"service"}),
		ProxyBound: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "proxy",
			Name:      "bound",
			Help:      "1 when the proxy resolved its remote service",
		}, []string{"service"}),
		Announcements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "membership",
			Name:      "announcements_total",
			Help:      "Registrations sent to newly joined frontends",
		}),
		MembershipDeparted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "membership",
			Name:      "departed",
			Help:      "Peers currently known as removed or unreachable",
		}),

		RemoteMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "transport",
			Name:      "messages_total",
			Help:      "Messages crossing the node boundary",
		}, []string{"direction", "result"}),

		LedgerBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "batches_total",
			Help:      "Ledger batches submitted, by result",
		}, []string{"result"}),
		LedgerQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "queue_length",
			Help:      "Ledger operations waiting for submission",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.MessagesProcessed,
		r.Faults,
		r.DeadLetters,
		r.IDsIssued,
		r.Watermark,
		r.IDsServed,
		r.Replenishments,
		r.StaleReplies,
		r.PendingRequests,
		r.ProxyBacklog,
		r.ProxyDropped,
		r.ProxyBound,
		r.Announcements,
		r.MembershipDeparted,
		r.RemoteMessages,
		r.LedgerBatches,
		r.LedgerQueue,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

// Register adds extra collectors (storage engines, custom collectors).
func (r *Registry) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
