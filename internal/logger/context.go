package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// With derives a child of the context logger with extra fields and stores it back.
// Without a context logger the child is derived from base.
func With(ctx context.Context, base *zap.Logger, fields ...zap.Field) (context.Context, *zap.Logger) {
	parent, ok := ctx.Value(ctxKey{}).(*zap.Logger)
	if !ok {
		parent = base
	}
	if parent == nil {
		parent = zap.NewNop()
	}
	l := parent.With(fields...)
	return WithLogger(ctx, l), l
}

// FromContext returns the request-scoped logger, or a no-op logger when none is set.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
