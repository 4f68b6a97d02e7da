package clusterserver

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

// Handler implements the Deliver RPC by handing inbound messages to the
// local actor system.
type Handler struct {
	sys      *actor.System
	registry *TypeRegistry
	metrics  *metric.Registry
	logger   logger.Logger
}

// NewHandler creates a handler delivering into sys.
func NewHandler(sys *actor.System, registry *TypeRegistry, metrics *metric.Registry, log logger.Logger) *Handler {
	if registry == nil {
		registry = DefaultTypeRegistry()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		sys:      sys,
		registry: registry,
		metrics:  metrics,
		logger:   log.With("component", "cluster-handler"),
	}
}

// Deliver handles the Deliver RPC.
func (h *Handler) Deliver(
	_ context.Context,
	req *connect.Request[DeliverRequest],
) (*connect.Response[DeliverResponse], error) {
	msg, sender, err := h.registry.Decode(req.Msg)
	if err != nil {
		h.logger.Warn("rejected inbound message",
			"to", req.Msg.To,
			"type", req.Msg.Type,
			"error", err)
		h.count("decode_error")
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	h.sys.Deliver(req.Msg.To, msg, sender)
	h.count("ok")
	return connect.NewResponse(&DeliverResponse{}), nil
}

// Route returns the mount path and handler for an http.ServeMux.
func (h *Handler) Route() (string, http.Handler) {
	return DeliverProcedure, connect.NewUnaryHandler(
		DeliverProcedure,
		h.Deliver,
		connect.WithCodec(msgpackCodec{}),
	)
}

func (h *Handler) count(result string) {
	if h.metrics != nil {
		h.metrics.RemoteMessages.WithLabelValues("in", result).Inc()
	}
}
