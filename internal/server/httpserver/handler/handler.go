// Package handler provides the HTTP request handlers of a frontend node.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// Accounts is the account service behind the API.
type Accounts interface {
	CreateAccount(ctx context.Context, balance int64) (domain.Account, error)
	NextID(ctx context.Context) (string, error)
	Reset(ctx context.Context) error
}

// Cluster reports cluster membership.
type Cluster interface {
	Local() domain.Member
	Members() []domain.Member
}

// Config holds the collaborators of a Handler.
type Config struct {
	Accounts Accounts
	// Cluster is optional; without it the node list is empty.
	Cluster Cluster
	// Ready reports whether the node can serve. Nil means always ready.
	Ready  func() error
	Logger logger.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	accounts Accounts
	cluster  Cluster
	ready    func() error
	logger   logger.Logger
	mux      *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	h := &Handler{
		accounts: cfg.Accounts,
		cluster:  cfg.Cluster,
		ready:    cfg.Ready,
		logger:   cfg.Logger.With("component", "http"),
		mux:      http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("POST /accounts", h.handleCreateAccount)
	h.mux.HandleFunc("GET /ids/next", h.handleNextID)

	h.mux.HandleFunc("POST /admin/v1/reset", h.handleReset)
	h.mux.HandleFunc("GET /admin/v1/cluster/nodes", h.handleClusterNodes)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// getRequestID returns the id the RequestID middleware put on the request.
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		status := errorCodeToHTTPStatus(code)
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
		}
		h.writeError(w, r, status, code, err.Error(), nil)
		return
	}

	h.logger.Error("internal error", "error", err, "path", r.URL.Path)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4091"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "IDM-ARG-"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-5030"), strings.HasSuffix(code, "-5031"), strings.HasSuffix(code, "-5032"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
