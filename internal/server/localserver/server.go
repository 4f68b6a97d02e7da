package localserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// connTimeout bounds one command exchange.
const connTimeout = 10 * time.Second

// Server represents the local management server.
type Server struct {
	path     string
	handler  *Handler
	logger   logger.Logger
	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
}

// New creates a new local server on socketPath.
func New(socketPath string, h *Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		path:    socketPath,
		handler: h,
		logger:  log.With("component", "local-server"),
	}
}

// Start binds the socket and serves in the background.
func (s *Server) Start() error {
	if err := s.listen(); err != nil {
		return err
	}
	go func() {
		if err := s.serve(); err != nil {
			s.logger.Error("local server stopped", "error", err)
		}
	}()
	return nil
}

// ListenAndServe binds the socket and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.listen(); err != nil {
		return err
	}
	return s.serve()
}

// listen removes a socket left behind by an earlier process, then binds.
func (s *Server) listen() error {
	if fi, err := os.Lstat(s.path); err == nil {
		if fi.Mode()&fs.ModeSocket == 0 {
			return fmt.Errorf("local socket %s: file exists and is not a socket", s.path)
		}
		if conn, err := net.DialTimeout("unix", s.path, time.Second); err == nil {
			conn.Close()
			return fmt.Errorf("local socket %s: already in use", s.path)
		}
		if err := os.Remove(s.path); err != nil {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("local listen %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("chmod local socket: %w", err)
	}
	s.listener = ln
	s.running.Store(true)
	s.logger.Info("local server listening", "socket", s.path)
	return nil
}

func (s *Server) serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown stops accepting commands and waits for running ones, or ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.Swap(false) {
		return nil
	}

	closeErr := s.listener.Close()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Fprintln(conn, "empty command")
		return
	}

	s.logger.Info("local command", "command", fields[0])
	if err := s.handler.Execute(conn, fields[0], fields[1:]); err != nil {
		s.logger.Warn("local command failed", "command", fields[0], "error", err)
	}
}
