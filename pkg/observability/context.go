package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	correlationIDCtxKey contextKey = "correlation_id"
	requestIDCtxKey     contextKey = "request_id"
)

// Attribute keys shared by logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
)

// WithCorrelationID adds a correlation ID to the context, generating one
// when id is empty.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDCtxKey).(string)
	return id
}

// WithRequestID adds a request ID to the context, generating one when id is
// empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// NewRequestContext starts a request scope, continuing parentCorrelationID
// when the caller sent one.
func NewRequestContext(ctx context.Context, parentCorrelationID string) context.Context {
	return WithCorrelationID(WithRequestID(ctx, ""), parentCorrelationID)
}
