package errors

import (
	"fmt"
	"net/http"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a business rule violation
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainInfrastructureError indicates an infrastructure-level failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"
)

// DomainError represents a domain-specific error with rich context.
// The With* builders return a copy, so the package-level sentinels below can
// be decorated per call without being mutated.
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *DomainError) clone() *DomainError {
	c := *e
	c.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		c.Details[k] = v
	}
	return &c
}

// WithCause returns a copy of the error with cause attached
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetail returns a copy of the error with one more detail
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	c := e.clone()
	c.Details[key] = value
	return c
}

// WithDetails returns a copy of the error with details merged in
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	c := e.clone()
	for k, v := range details {
		c.Details[k] = v
	}
	return c
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	c := e.clone()
	c.Message = message
	return c
}

// Is matches on type and code, so errors.Is(err, ErrNodeNotFound) works for
// decorated copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Detail returns a detail value by key
func (e *DomainError) Detail(key string) (interface{}, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// domainErrorTypeToStatusCode maps error types to HTTP status codes
func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return http.StatusBadRequest
	case DomainBusinessRuleError:
		return http.StatusUnprocessableEntity
	case DomainNotFoundError:
		return http.StatusNotFound
	case DomainConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Common domain errors

var (
	// Flow errors
	ErrFlowNotFound = NewDomainError(
		DomainNotFoundError,
		"FLOW_NOT_FOUND",
		"The requested flow does not exist",
	)

	ErrFlowInvalid = NewDomainError(
		DomainBusinessRuleError,
		"FLOW_INVALID",
		"Cannot save flow",
	)

	ErrFlowLimitExceeded = NewDomainError(
		DomainBusinessRuleError,
		"FLOW_LIMIT_EXCEEDED",
		"Maximum size of flow exceeded",
	)

	ErrSavedFlowNotFound = NewDomainError(
		DomainNotFoundError,
		"SAVED_FLOW_NOT_FOUND",
		"The flow has not been saved yet",
	)

	// Node errors
	ErrNodeNotFound = NewDomainError(
		DomainNotFoundError,
		"NODE_NOT_FOUND",
		"The requested node does not exist",
	)

	ErrUnknownNodeKind = NewDomainError(
		DomainValidationError,
		"UNKNOWN_NODE_KIND",
		"Node kind is not registered",
	)

	ErrInvalidNodePosition = NewDomainError(
		DomainValidationError,
		"INVALID_NODE_POSITION",
		"Node position coordinates are invalid",
	)

	ErrInvalidNodeData = NewDomainError(
		DomainValidationError,
		"INVALID_NODE_DATA",
		"Node data is invalid",
	)

	// Edge errors
	ErrEdgeNotFound = NewDomainError(
		DomainNotFoundError,
		"EDGE_NOT_FOUND",
		"The requested edge does not exist",
	)

	ErrConnectionRejected = NewDomainError(
		DomainConflictError,
		"CONNECTION_REJECTED",
		"Connection was rejected",
	)

	// Infrastructure errors
	ErrConcurrentModification = NewDomainError(
		DomainConflictError,
		"CONCURRENT_MODIFICATION",
		"The resource was modified by another process",
	)
)
