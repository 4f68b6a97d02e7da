package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes follow the format IDM-<AREA>-<status><n>.
type DomainError struct {
	Code    string // Error code (e.g., "IDM-SYS-5030")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// ID issuance errors (ID)
// ============================================================================

var (
	// ErrInvalidCount indicates a range request for a non-positive count.
	ErrInvalidCount = NewDomainError("IDM-ID-4001", "id count must be positive")

	// ErrStaleGeneration indicates a range reply for a generation the cache already left.
	ErrStaleGeneration = NewDomainError("IDM-ID-4091", "stale id generation")
)

// ============================================================================
// Discovery errors (DISC)
// ============================================================================

var (
	// ErrServiceNotFound indicates no announced service matches a proxy's type.
	ErrServiceNotFound = NewDomainError("IDM-DISC-4040", "service not announced")

	// ErrNotBound indicates a proxy has not resolved its service yet.
	ErrNotBound = NewDomainError("IDM-DISC-5031", "service not bound yet")

	// ErrBacklogFull indicates a proxy dropped a message because its backlog is full.
	ErrBacklogFull = NewDomainError("IDM-DISC-5032", "proxy backlog full")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("IDM-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("IDM-SYS-5001", "storage error")

	// ErrUnavailable indicates a bounded wait elapsed without a reply.
	ErrUnavailable = NewDomainError("IDM-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("IDM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("IDM-SYS-4290", "too many requests")

	// ErrNotFound indicates an unknown route or resource.
	ErrNotFound = NewDomainError("IDM-SYS-4040", "not found")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("IDM-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("IDM-ARG-1002", "missing required argument")
)
