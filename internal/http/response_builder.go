// Package http exposes the finance service as a JSON REST API.
//
// This file implements the builder used by every handler to write JSON
// bodies and the error payload shared by all endpoints.

package http

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the "code" field of error responses.
const (
	CodeMissingUserID     = "missing_user_id"
	CodeValidation        = "validation_error"
	CodeDuplicateCategory = "duplicate_category"
	CodeInvalidBody       = "invalid_body"
	CodeNotFound          = "not_found"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal_error"
)

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// MessageBody confirms an operation that returns no record.
type MessageBody struct {
	Message string `json:"message"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": ...} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(MessageBody{Message: msg})
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) error {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(b.body)
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message, field string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: message, Code: code, Field: field})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(code, message, field string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, code, message, field)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message, "")
}

// InternalServerError creates a 500 response. message must not carry error details.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, message, "")
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded. Please try again later.", "")
}
