package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func statement(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()
	const sql = "UPDATE termination_cases SET status = $1 WHERE id = $2 AND version = $3"

	t.Run("failed query", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormLogger(zerolog.New(&buf), gormlogger.Warn)
		l.Trace(ctx, time.Now(), statement(sql), errors.New("deadlock detected"))

		out := buf.String()
		assert.Contains(t, out, `"level":"error"`)
		assert.Contains(t, out, "deadlock detected")
		assert.Contains(t, out, "termination_cases")
		assert.Contains(t, out, `"component":"gorm"`)
	})

	t.Run("record not found is quiet", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormLogger(zerolog.New(&buf), gormlogger.Warn)
		l.Trace(ctx, time.Now(), statement(sql), gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("slow query", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormLogger(zerolog.New(&buf), gormlogger.Warn)
		l.Trace(ctx, time.Now().Add(-2*time.Second), statement(sql), nil)
		assert.Contains(t, buf.String(), "slow query")
	})

	t.Run("fast query below info", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormLogger(zerolog.New(&buf), gormlogger.Warn)
		l.Trace(ctx, time.Now(), statement(sql), nil)
		assert.Empty(t, buf.String())
	})

	t.Run("info logs every statement at debug", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormLogger(zerolog.New(&buf), gormlogger.Info)
		l.Trace(ctx, time.Now(), statement(sql), nil)
		assert.Contains(t, buf.String(), `"level":"debug"`)
		assert.Contains(t, buf.String(), "version = $3")
	})

	t.Run("silent", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormLogger(zerolog.New(&buf), gormlogger.Warn).LogMode(gormlogger.Silent)
		l.Trace(ctx, time.Now(), statement(sql), errors.New("boom"))
		l.Error(ctx, "dial %s", "postgres")
		assert.Empty(t, buf.String())
	})
}

func TestGormLoggerMessages(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	base := newGormLogger(zerolog.New(&buf), gormlogger.Warn)

	base.Info(ctx, "migrated %d tables", 3)
	assert.Empty(t, buf.String())

	base.LogMode(gormlogger.Info).Info(ctx, "migrated %d tables", 3)
	assert.Contains(t, buf.String(), "migrated 3 tables")
	assert.Equal(t, gormlogger.Warn, base.level, "LogMode returns a copy")

	buf.Reset()
	base.Warn(ctx, "pool %s", "exhausted")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestGormLoggerParamsFilter(t *testing.T) {
	l := newGormLogger(zerolog.Nop(), gormlogger.Info)
	sql, vars := l.ParamsFilter(context.Background(), "SELECT 1 WHERE refund_account = ?", "DE89 3704")
	assert.Equal(t, "SELECT 1 WHERE refund_account = ?", sql)
	assert.Nil(t, vars)
}
