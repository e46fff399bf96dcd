package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger stores logger on the context. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the context logger or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is a short alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithField returns a context whose logger carries key=value.
func WithField(ctx context.Context, key string, value any) context.Context {
	l := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &l)
}

// WithFields returns a context whose logger carries all fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	c := FromContext(ctx).With()
	for k, v := range fields {
		c = addField(c, k, v)
	}
	l := c.Logger()
	return WithLogger(ctx, &l)
}

// WithTenant tags the context logger with a tenant identifier.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return WithField(ctx, "tenant_id", tenantID)
}

// WithRun tags the context logger with a run identifier.
func WithRun(ctx context.Context, runID string) context.Context {
	return WithField(ctx, "run_id", runID)
}

// WithFieldName tags the context logger with the field being classified.
func WithFieldName(ctx context.Context, field string) context.Context {
	return WithField(ctx, "field", field)
}

// WithVersion tags the context logger with a candidate version label.
func WithVersion(ctx context.Context, version string) context.Context {
	return WithField(ctx, "version", version)
}

// WithRequestID tags the context logger with an HTTP request identifier.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithField(ctx, "request_id", requestID)
}
