package database

import (
	"bytes"
	"context"
	"testing"
	"time"

	"agrocommunity_backend/internal/logger"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperation(t *testing.T) {
	assert.Equal(t, "SELECT", Operation("  select * from users"))
	assert.Equal(t, "INSERT", Operation("INSERT INTO posts"))
	assert.Equal(t, "", Operation(""))
}

func TestLogger_TraceFailures(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("test", &buf)
	l := NewLogger(time.Hour)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "UPDATE users", 0 }, assert.AnError)
	assert.Contains(t, buf.String(), "database operation failed")
	assert.Contains(t, buf.String(), "UPDATE")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), func() (string, int64) { return "DELETE", 0 }, assert.AnError)
	assert.Empty(t, buf.String())
}
