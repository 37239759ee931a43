package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey keeps the package's context values from colliding with
// other packages' string keys.
type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// WithContext stores a logger in ctx so lower layers can log with the
// request's correlation fields.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the stored logger, or a nop logger when none
// was stored.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request ID in ctx and returns a logger
// already tagged with it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	tagged := logger.With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithContext(ctx, tagged), tagged
}

// WithUserID records the authenticated user in ctx and returns a
// logger already tagged with it.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	tagged := logger.With(zap.String("user_id", userID))
	ctx = context.WithValue(ctx, userIDKey, userID)
	return WithContext(ctx, tagged), tagged
}

// GetRequestID returns the request ID stored in ctx, if any. The gorm
// logger uses it to correlate SQL with the originating request.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserID returns the authenticated user ID stored in ctx, if any.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
