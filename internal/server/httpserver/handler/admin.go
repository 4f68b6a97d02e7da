package handler

import (
	"net/http"
	"time"
)

// handleReset handles POST /admin/v1/reset. It returns once the reset
// coordinator acknowledges.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Reset(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.logger.Info("reset requested", "request_id", getRequestID(r))
	h.writeJSON(w, r, http.StatusOK, ResetResponse{
		Reset:          true,
		AcknowledgedAt: time.Now().UTC(),
	})
}

// handleClusterNodes handles GET /admin/v1/cluster/nodes.
func (h *Handler) handleClusterNodes(w http.ResponseWriter, r *http.Request) {
	resp := ClusterNodesResponse{Nodes: []NodeResponse{}}
	if h.cluster != nil {
		local := h.cluster.Local()
		for _, m := range h.cluster.Members() {
			resp.Nodes = append(resp.Nodes, NodeResponse{
				Name:    m.Name,
				UID:     m.UID,
				Address: m.Address,
				Roles:   m.Roles,
				Status:  m.Status.String(),
				Local:   m.UID == local.UID,
			})
		}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}
