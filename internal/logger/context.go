package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey struct{}

// scope is a request logger plus the fields handlers attach while serving.
type scope struct {
	base *zap.Logger

	mu     sync.Mutex
	fields []zap.Field
}

// ContextWithLogger starts a request scope around logger.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &scope{base: logger})
}

// AddFields annotates the request scope. Every later FromContext call,
// including the request's closing log line, carries the fields.
// Without a scope it does nothing.
func AddFields(ctx context.Context, fields ...zap.Field) {
	s, ok := ctx.Value(ctxKey{}).(*scope)
	if !ok {
		return
	}
	s.mu.Lock()
	s.fields = append(s.fields, fields...)
	s.mu.Unlock()
}

// FromContext returns the request logger with its attached fields, or
// fallback when ctx has no scope. A nil fallback yields zap.NewNop().
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	s, ok := ctx.Value(ctxKey{}).(*scope)
	if !ok {
		if fallback == nil {
			return zap.NewNop()
		}
		return fallback
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base.With(s.fields...)
}
