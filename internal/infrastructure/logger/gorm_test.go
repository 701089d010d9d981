package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFunc(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestNewGormLogger(t *testing.T) {
	l, _ := observed()
	gl := NewGormLogger(l, gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)

	assert.NotNil(t, NewGormLogger(nil, gormlogger.Warn))
}

func TestGormLogger_LogMode(t *testing.T) {
	l, _ := observed()
	gl := NewGormLogger(l, gormlogger.Warn)

	silent := gl.LogMode(gormlogger.Silent).(*GormLogger)
	assert.Equal(t, gormlogger.Silent, silent.logLevel)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	base, _ := observed()
	ctx, _ := WithRequestID(context.Background(), base, "req-7")

	t.Run("query logged at debug with request id", func(t *testing.T) {
		l, logs := observed()
		NewGormLogger(l, gormlogger.Info).Trace(ctx, time.Now(), sqlFunc(`SELECT * FROM "orders"`, 1), nil)

		entries := logs.FilterMessage("SQL Query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
		assert.Equal(t, `SELECT * FROM "orders"`, entries[0].ContextMap()["sql"])
	})

	t.Run("errors logged", func(t *testing.T) {
		l, logs := observed()
		NewGormLogger(l, gormlogger.Error).Trace(ctx, time.Now(), sqlFunc("SELECT 1", 0), errors.New("boom"))
		assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())
	})

	t.Run("record not found ignored by default", func(t *testing.T) {
		l, logs := observed()
		NewGormLogger(l, gormlogger.Info).Trace(ctx, time.Now(), sqlFunc("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow queries logged at warn", func(t *testing.T) {
		l, logs := observed()
		NewGormLogger(l, gormlogger.Warn, WithSlowThreshold(time.Millisecond)).
			Trace(ctx, time.Now().Add(-time.Second), sqlFunc("SELECT 1", 0), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
		assert.Contains(t, logs.All()[0].Message, "SLOW SQL")
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		l, logs := observed()
		NewGormLogger(l, gormlogger.Silent).Trace(ctx, time.Now(), sqlFunc("SELECT 1", 0), errors.New("boom"))
		assert.Equal(t, 0, logs.Len())
	})
}

func TestGormLogger_Messages(t *testing.T) {
	l, logs := observed()
	gl := NewGormLogger(l, gormlogger.Warn)

	gl.Info(context.Background(), "info %d", 1)
	gl.Warn(context.Background(), "warn %d", 2)
	gl.Error(context.Background(), "error %d", 3)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "warn 2", logs.All()[0].Message)
	assert.Equal(t, "error 3", logs.All()[1].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
