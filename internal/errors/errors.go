package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in the error_code extension of problem responses.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeNoRecords         = "NO_RECORDS"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
)

// APIError is an HTTP-facing error raised by handlers and request binding.
// ErrorHandler turns it into ProblemDetails.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload of a VALIDATION_FAILED error
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates an APIError without details
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func withDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

// ErrStoreUnavailable is returned by read endpoints when no database is configured
var ErrStoreUnavailable = New(http.StatusServiceUnavailable, CodeStoreUnavailable, "Source store is not configured")

// InvalidRequestWithError wraps a request that could not be bound at all
func InvalidRequestWithError(err error) *APIError {
	return withDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation reports a single rejected field
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// NewValidationErrors reports several rejected fields at once
func NewValidationErrors(errs []ValidationError) *APIError {
	return withDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationErrors{Errors: errs})
}

// ErrUnsupportedFormat rejects an export format the exporter does not know
func ErrUnsupportedFormat(format string) *APIError {
	return withDetails(http.StatusBadRequest, CodeUnsupportedFormat,
		fmt.Sprintf("unsupported export format %q", format),
		ValidationErrors{Errors: []ValidationError{{Field: "format", Message: "must be csv, xlsx or json"}}})
}

// ErrNoRecords reports that extraction produced nothing to export for corpCode
func ErrNoRecords(corpCode string) *APIError {
	return withDetails(http.StatusNotFound, CodeNoRecords,
		fmt.Sprintf("no separate balance sheet records for %s", corpCode),
		map[string]string{"corp_code": corpCode})
}
