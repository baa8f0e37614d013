package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/nkkko/eventops/internal/operations"
	"github.com/nkkko/eventops/internal/views"
)

// ErrorType classifies an API error; each type maps to one HTTP status
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeTimeout    ErrorType = "timeout"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation: http.StatusBadRequest,
	ErrorTypeNotFound:   http.StatusNotFound,
	ErrorTypeConflict:   http.StatusConflict,
	ErrorTypeInternal:   http.StatusInternalServerError,
	ErrorTypeTimeout:    http.StatusGatewayTimeout,
}

// APIError is the error object carried in the response envelope
type APIError struct {
	Type      ErrorType `json:"type"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	HTTPCode  int       `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Code, e.Message)
}

// WithDetails attaches structured details
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// WithRequestID attaches the request id
func (e *APIError) WithRequestID(requestID string) *APIError {
	e.RequestID = requestID
	return e
}

// New creates an error of type t with the status that type maps to
func New(t ErrorType, code, message string) *APIError {
	status, ok := statusByType[t]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &APIError{Type: t, Code: code, Message: message, HTTPCode: status}
}

func ValidationError(code, message string) *APIError { return New(ErrorTypeValidation, code, message) }
func NotFoundError(code, message string) *APIError   { return New(ErrorTypeNotFound, code, message) }
func ConflictError(code, message string) *APIError   { return New(ErrorTypeConflict, code, message) }
func InternalError(code, message string) *APIError   { return New(ErrorTypeInternal, code, message) }
func TimeoutError(code, message string) *APIError    { return New(ErrorTypeTimeout, code, message) }

// sentinels maps errors from the domain layers, first match wins
var sentinels = []struct {
	target error
	typ    ErrorType
	code   string
}{
	{operations.ErrNotFound, ErrorTypeNotFound, "not_found"},
	{views.ErrUnknownView, ErrorTypeNotFound, "unknown_view"},
	{operations.ErrInvalidTransition, ErrorTypeConflict, "invalid_transition"},
	{operations.ErrConflict, ErrorTypeConflict, "conflict"},
	{operations.ErrInvalidInput, ErrorTypeValidation, "invalid_input"},
	{views.ErrInvalidScope, ErrorTypeValidation, "invalid_scope"},
	{context.DeadlineExceeded, ErrorTypeTimeout, "timeout"},
}

// FromError maps an error returned by the domain layers to an API error.
// Anything unrecognised becomes an internal error.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	for _, s := range sentinels {
		if stderrors.Is(err, s.target) {
			return New(s.typ, s.code, err.Error())
		}
	}
	return InternalError("internal_error", err.Error())
}
