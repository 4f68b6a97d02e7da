package clusterserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// Server exposes a Handler over HTTP.
type Server struct {
	addr     string
	handler  *Handler
	logger   logger.Logger
	listener net.Listener
	srv      *http.Server
}

// New creates a cluster server listening on addr once started.
func New(addr string, h *Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	mux := http.NewServeMux()
	mux.Handle(h.Route())
	return &Server{
		addr:    addr,
		handler: h,
		logger:  log.With("component", "cluster-server"),
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("cluster listen %s: %w", s.addr, err)
	}
	s.Serve(ln)
	return nil
}

// Serve serves on an already bound listener in the background.
func (s *Server) Serve(ln net.Listener) {
	s.listener = ln
	s.logger.Info("cluster server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("cluster server stopped", "error", err)
		}
	}()
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
