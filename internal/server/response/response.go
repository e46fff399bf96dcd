// Package response writes the API's error envelope and maps typed errors to
// HTTP status codes.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentstation/fieldeval/pkg/errors"
)

// Envelope is the body of every error response.
type Envelope struct {
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Fail aborts the request with an error body.
func Fail(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, Envelope{Error: &Error{Code: code, Message: message, Details: details}})
}

// BadRequest writes a 400 error response.
func BadRequest(c *gin.Context, message, details string) {
	Fail(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

// NotFound writes a 404 error response.
func NotFound(c *gin.Context, message, details string) {
	Fail(c, http.StatusNotFound, "NOT_FOUND", message, details)
}

// Unprocessable writes a 422 error response.
func Unprocessable(c *gin.Context, message, details string) {
	Fail(c, http.StatusUnprocessableEntity, "UNPROCESSABLE", message, details)
}

// Unauthorized writes a 401 error response.
func Unauthorized(c *gin.Context, details string) {
	Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing API key", details)
}

// RateLimited writes a 429 error response.
func RateLimited(c *gin.Context) {
	Fail(c, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded", "Too many requests. Please try again later.")
}

// InternalError writes a 500 error response without exposing err.
func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "An unexpected error occurred")
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(c *gin.Context, details string) {
	Fail(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service unavailable", details)
}

// FromError maps typed errors to responses.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.IsReferenceMissing(err):
		Unprocessable(c, "Reference record missing", err.Error())
	case errors.IsValidationError(err):
		BadRequest(c, "Invalid request", err.Error())
	case errors.IsNotFound(err):
		NotFound(c, "Resource not found", err.Error())
	case errors.IsRateLimited(err):
		RateLimited(c)
	case errors.IsServiceUnavailable(err):
		ServiceUnavailable(c, err.Error())
	default:
		InternalError(c)
	}
}
