package logger

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

const (
	requestIDAttr = "request_id"
	userIDAttr    = "user_id"
)

// ============================================
// Context operations
// ============================================

// WithAttrs returns a copy of ctx whose logger carries the extra key/value
// pairs. Later values for the same key replace earlier ones.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	record := slog.Record{}
	record.Add(args...)

	merged := append([]slog.Attr(nil), attrsFrom(ctx)...)
	record.Attrs(func(a slog.Attr) bool {
		for i := range merged {
			if merged[i].Key == a.Key {
				merged[i] = a
				return true
			}
		}
		merged = append(merged, a)
		return true
	})
	return context.WithValue(ctx, attrsKey{}, merged)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithAttrs(ctx, requestIDAttr, requestID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return WithAttrs(ctx, userIDAttr, userID)
}

func GetRequestID(ctx context.Context) string {
	return stringAttr(ctx, requestIDAttr)
}

func GetUserID(ctx context.Context) string {
	return stringAttr(ctx, userIDAttr)
}

func attrsFrom(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

func stringAttr(ctx context.Context, key string) string {
	for _, a := range attrsFrom(ctx) {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

// ============================================
// Context-aware logging
// ============================================

// FromContext returns the global logger enriched with the attributes stored
// in ctx.
func FromContext(ctx context.Context) *slog.Logger {
	attrs := attrsFrom(ctx)
	if len(attrs) == 0 {
		return GetLogger()
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return GetLogger().With(args...)
}

func CtxDebug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).DebugContext(ctx, msg, args...)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).InfoContext(ctx, msg, args...)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).WarnContext(ctx, msg, args...)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).ErrorContext(ctx, msg, args...)
}

// CtxWithError logs at error level with err attached.
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err.Error()}, args...)
	}
	FromContext(ctx).ErrorContext(ctx, msg, args...)
}
