package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestGormLogger_Options(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)

	switched, ok := gl.LogMode(gormlogger.Error).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, switched.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel, "LogMode must not mutate the receiver")
}

func TestGormLogger_Messages(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	gl.Info(ctx, "migrating %s", "payments")
	gl.Warn(ctx, "slow pool %d", 3)
	gl.Error(ctx, "lost connection")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "slow pool 3", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "gorm", entries[1].LoggerName)
}

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return `SELECT * FROM "payments" WHERE job_id = 7`, 1 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
	}{
		{"query error", gormlogger.Error, time.Now(), errors.New("relation does not exist"), "SQL Error"},
		{"record not found ignored", gormlogger.Error, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"slow query", gormlogger.Warn, time.Now().Add(-time.Second), nil, "SLOW SQL >= 200ms"},
		{"normal query at info", gormlogger.Info, time.Now(), nil, "SQL Query"},
		{"normal query below info", gormlogger.Warn, time.Now(), nil, ""},
		{"silent", gormlogger.Silent, time.Now().Add(-time.Second), errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, recorded := newObservedGorm(tt.level)
			gl.Trace(context.Background(), tt.begin, query, tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, recorded.Len())
				return
			}
			require.Equal(t, 1, recorded.Len())
			entry := recorded.All()[0]
			assert.Equal(t, tt.wantMsg, entry.Message)
			assert.Equal(t, int64(1), entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_TraceCarriesRequestID(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Info)
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-42", recorded.All()[0].ContextMap()["request_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"verbose": gormlogger.Warn,
		"":        gormlogger.Warn,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapGormLogLevel(in), "level %q", in)
	}
}

func TestGormLevelForEnv(t *testing.T) {
	assert.Equal(t, gormlogger.Warn, GormLevelForEnv("development"))
	assert.Equal(t, gormlogger.Error, GormLevelForEnv("production"))
	assert.Equal(t, gormlogger.Error, GormLevelForEnv("test"))
}
