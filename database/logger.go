package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agrocommunity_backend/internal/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger routes gorm output to the application logger.
type Logger struct {
	slow  time.Duration
	level gormlogger.LogLevel
}

func NewLogger(slow time.Duration) *Logger {
	return &Logger{slow: slow, level: gormlogger.Warn}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *Logger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		logger.CtxInfo(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		logger.CtxWarn(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *Logger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		logger.CtxError(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace reports every statement through logger.DBLog. A missing record is
// an expected outcome, not a failure.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == gormlogger.Silent {
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	query, rows := fc()
	logger.DBLog(Operation(query), fmt.Sprintf("rows=%d", rows), elapsed, err)

	if l.slow > 0 && elapsed > l.slow {
		logger.CtxWarn(ctx, "Slow query", "duration_ms", elapsed.Milliseconds(), "sql", query)
	}
}

// Operation returns the leading SQL keyword of query in upper case.
func Operation(query string) string {
	op, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	return strings.ToUpper(op)
}
