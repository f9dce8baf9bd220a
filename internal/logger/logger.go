package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

var current atomic.Pointer[slog.Logger]

// Init configures the global logger for env: "development", "test" or
// "production". Anything else is treated as production.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(env string, w io.Writer) {
	l := slog.New(newHandler(env, w))
	current.Store(l)
	slog.SetDefault(l)
}

func newHandler(env string, w io.Writer) slog.Handler {
	switch env {
	case "development":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})
	case "test":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo, AddSource: true})
	}
}

// GetLogger returns the global logger, setting up a development one on
// first use if Init was never called.
func GetLogger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	current.CompareAndSwap(nil, slog.New(newHandler("development", os.Stdout)))
	return current.Load()
}

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// ============================================
// Event loggers
// ============================================

// outcome logs a success at okLevel and a failure at failLevel with the
// error attached.
func outcome(msg string, okLevel, failLevel slog.Level, err error, fields ...any) {
	level, text := okLevel, msg
	if err != nil {
		level, text = failLevel, msg+" failed"
		fields = append(fields, "error", err.Error())
	}
	GetLogger().Log(context.Background(), level, text, fields...)
}

// DBLog records a storage operation.
func DBLog(operation, target string, duration time.Duration, err error) {
	outcome("database operation", slog.LevelDebug, slog.LevelError, err,
		"operation", operation,
		"target", target,
		"duration_ms", duration.Milliseconds(),
	)
}

// RealtimeLog records a socket lifecycle or delivery event.
func RealtimeLog(event, userID string, err error) {
	outcome("realtime event", slog.LevelDebug, slog.LevelWarn, err,
		"event", event,
		"user_id", userID,
	)
}
