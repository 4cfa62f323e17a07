package models

import (
	"errors"
	"net/http"
)

// APIError is the single normalized error shape used across invocation modes:
// sync JSON responses, SSE error events, async task error payloads and
// webhook failure notifications.
type APIError struct {
	StatusCode int    `json:"status_code" example:"400"`
	ErrorType  string `json:"error_type" example:"ValidationError"`
	Message    string `json:"message" example:"Number of slides must be greater than 0"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewValidationError fails a request before any stage runs
func NewValidationError(message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, ErrorType: "ValidationError", Message: message}
}

// NewAuthorizationError reports an ownership mismatch
func NewAuthorizationError(message string) *APIError {
	return &APIError{StatusCode: http.StatusForbidden, ErrorType: "AuthorizationError", Message: message}
}

// NewNotFoundError reports a missing entity
func NewNotFoundError(message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, ErrorType: "NotFoundError", Message: message}
}

// NewUpstreamError reports a collaborator failure (outline/structure/content/assets)
func NewUpstreamError(message string) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, ErrorType: "UpstreamGenerationError", Message: message}
}

// NewExportError reports an export failure after slides are already committed
func NewExportError(message string) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, ErrorType: "ExportError", Message: message}
}

// NormalizeError coerces any error into an APIError, defaulting to a 500
func NormalizeError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		ErrorType:  "InternalServerError",
		Message:    err.Error(),
	}
}

// ToJSON renders the error as a JSON column payload
func (e *APIError) ToJSON() JSON {
	return JSON{
		"status_code": e.StatusCode,
		"error_type":  e.ErrorType,
		"message":     e.Message,
	}
}
