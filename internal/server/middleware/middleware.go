// Package middleware provides gin middleware for the API server: request
// logging, panic recovery, request IDs, CORS, authentication and rate
// limiting.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/fieldeval/internal/server/response"
	"github.com/agentstation/fieldeval/pkg/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns an ID to every request, keeping one the client sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger logs each request with structured fields and attaches a request
// scoped logger to the request context.
func Logger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetString(RequestIDHeader)

		ctx := logging.WithLogger(c.Request.Context(), logger)
		ctx = logging.WithRequestID(ctx, id)
		ctx = logging.WithField(ctx, "method", c.Request.Method)
		ctx = logging.WithField(ctx, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)
		reqLogger := logging.FromContext(ctx)

		c.Next()

		event := reqLogger.Info()
		if c.Writer.Status() >= 500 {
			event = reqLogger.Error()
		}
		event.
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// Recovery turns panics into 500 responses.
func Recovery(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().
					Interface("panic", rec).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("Panic recovered")
				response.InternalError(c)
			}
		}()
		c.Next()
	}
}
