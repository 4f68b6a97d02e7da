package clusterserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// DeliverProcedure is the Connect procedure carrying unit messages.
const DeliverProcedure = "/idmesh.cluster.v1.MailboxService/Deliver"

// ErrTransportClosed is returned by Send after Close.
var ErrTransportClosed = errors.New("transport closed")

// TransportConfig configures a Transport.
type TransportConfig struct {
	// Registry resolves message types. Defaults to DefaultTypeRegistry.
	Registry *TypeRegistry
	// HTTPClient is shared by every peer. Defaults to a client with
	// RequestTimeout.
	HTTPClient *http.Client
	// RequestTimeout bounds one Deliver call.
	RequestTimeout time.Duration
	Logger         logger.Logger
	Metrics        *metric.Registry
}

// Transport sends unit messages to other nodes. Each destination host
// gets its own ordered queue drained by one goroutine, so Send never
// waits on the network and per-host order is preserved.
type Transport struct {
	cfg TransportConfig
	log logger.Logger

	mu     sync.Mutex
	peers  map[string]*peer
	sys    *actor.System
	closed bool
	wg     sync.WaitGroup
}

// NewTransport creates a transport with no peers.
func NewTransport(cfg TransportConfig) *Transport {
	if cfg.Registry == nil {
		cfg.Registry = DefaultTypeRegistry()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return &Transport{
		cfg:   cfg,
		log:   cfg.Logger.With("component", "transport"),
		peers: make(map[string]*peer),
	}
}

// Bind gives the transport the local system, used to answer an Identify
// that could not be delivered.
func (t *Transport) Bind(sys *actor.System) {
	t.mu.Lock()
	t.sys = sys
	t.mu.Unlock()
}

// Send implements actor.Transport. Encoding errors are returned at once;
// network errors are logged by the peer's worker.
func (t *Transport) Send(to actor.Address, msg any, sender actor.Address) error {
	req, err := t.cfg.Registry.Encode(to, msg, sender)
	if err != nil {
		t.count("out", "encode_error")
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	p, ok := t.peers[to.Host]
	if !ok {
		p = t.newPeer(to.Host)
		t.peers[to.Host] = p
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			p.run()
		}()
	}
	p.push(outbound{req: req, to: to, msg: msg, sender: sender})
	return nil
}

// Close stops every peer worker. Queued messages are dropped.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	for _, p := range t.peers {
		p.stop()
	}
	t.mu.Unlock()

	t.wg.Wait()
	return nil
}

func (t *Transport) newPeer(host string) *peer {
	return &peer{
		t:    t,
		host: host,
		client: connect.NewClient[DeliverRequest, DeliverResponse](
			t.cfg.HTTPClient,
			"http://"+host+DeliverProcedure,
			connect.WithCodec(msgpackCodec{}),
		),
		signal: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
}

func (t *Transport) count(direction, result string) {
	if t.cfg.Metrics != nil {
		t.cfg.Metrics.RemoteMessages.WithLabelValues(direction, result).Inc()
	}
}

// undeliverable answers an Identify locally so the asker is not left
// waiting for a node that cannot be reached.
func (t *Transport) undeliverable(o outbound) {
	id, ok := o.msg.(actor.Identify)
	if !ok || o.sender.IsZero() {
		return
	}
	t.mu.Lock()
	sys := t.sys
	t.mu.Unlock()
	if sys != nil {
		sys.Deliver(o.sender.Path, actor.Identity{Token: id.Token}, actor.Address{})
	}
}

type outbound struct {
	req    *DeliverRequest
	to     actor.Address
	msg    any
	sender actor.Address
}

type peer struct {
	t      *Transport
	host   string
	client *connect.Client[DeliverRequest, DeliverResponse]

	mu     sync.Mutex
	queue  []outbound
	signal chan struct{}
	quit   chan struct{}
}

func (p *peer) push(o outbound) {
	p.mu.Lock()
	p.queue = append(p.queue, o)
	p.mu.Unlock()
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *peer) stop() {
	close(p.quit)
}

func (p *peer) run() {
	for {
		select {
		case <-p.quit:
			return
		case <-p.signal:
		}

		p.mu.Lock()
		batch := p.queue
		p.queue = nil
		p.mu.Unlock()

		for _, o := range batch {
			select {
			case <-p.quit:
				return
			default:
			}
			if err := p.deliver(o); err != nil {
				p.t.log.Warn("remote delivery failed",
					"host", p.host,
					"to", o.to.Path,
					"type", o.req.Type,
					"error", err)
				p.t.count("out", "error")
				p.t.undeliverable(o)
				continue
			}
			p.t.count("out", "ok")
		}
	}
}

func (p *peer) deliver(o outbound) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.t.cfg.RequestTimeout)
	defer cancel()
	if _, err := p.client.CallUnary(ctx, connect.NewRequest(o.req)); err != nil {
		return fmt.Errorf("deliver to %s: %w", o.to, err)
	}
	return nil
}
