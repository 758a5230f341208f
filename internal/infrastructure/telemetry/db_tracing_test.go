package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tracedRow struct {
	ID   int64
	Name string
}

func TestDBTracing_SlowQueryLogged(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	core, logs := observer.New(zapcore.WarnLevel)
	tracing := NewDBTracing(time.Nanosecond, zap.New(core))
	require.NoError(t, tracing.Register(db, "sqlite"))

	require.NoError(t, db.Create(&tracedRow{Name: "geyser"}).Error)
	var got []tracedRow
	require.NoError(t, db.Find(&got).Error)
	assert.Len(t, got, 1)

	slow := logs.FilterMessage("Slow database query").All()
	require.NotEmpty(t, slow)
	assert.Equal(t, "traced_rows", slow[0].ContextMap()["table"])
}

func TestNewDBTracing_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultSlowQueryThreshold, NewDBTracing(0, zap.NewNop()).slowThreshold)
}
