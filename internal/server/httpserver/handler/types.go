package handler

import "time"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// CreateAccountRequest is the request body for POST /accounts. The body
// is optional.
type CreateAccountRequest struct {
	Balance int64 `json:"balance,omitempty"`
}

// AccountResponse is the response body for POST /accounts.
type AccountResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance,omitempty"`
}

// IDResponse is the response body for GET /ids/next.
type IDResponse struct {
	ID string `json:"id"`
}

// ResetResponse is the response body for POST /admin/v1/reset.
type ResetResponse struct {
	Reset          bool      `json:"reset"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
}

// NodeResponse represents a cluster member.
type NodeResponse struct {
	Name    string   `json:"name"`
	UID     string   `json:"uid"`
	Address string   `json:"address"`
	Roles   []string `json:"roles"`
	Status  string   `json:"status"`
	Local   bool     `json:"local,omitempty"`
}

// ClusterNodesResponse is the response body for GET /admin/v1/cluster/nodes.
type ClusterNodesResponse struct {
	Nodes []NodeResponse `json:"nodes"`
}
