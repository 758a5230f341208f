package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold applies when no threshold is configured
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// DBTracing adds otelgorm spans plus slow-query marking to a gorm.DB
type DBTracing struct {
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBTracing creates the plugin
func NewDBTracing(slowThreshold time.Duration, logger *zap.Logger) *DBTracing {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowQueryThreshold
	}
	return &DBTracing{slowThreshold: slowThreshold, logger: logger}
}

// Register installs otelgorm and the timing callbacks on db.
// Query variables are never attached to spans.
func (t *DBTracing) Register(db *gorm.DB, dbSystem string) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}

	cb := db.Callback()
	type hook struct {
		before, after func(name string, fn func(*gorm.DB)) error
	}
	hooks := map[string]hook{
		"create": {
			before: func(n string, fn func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Create().After("gorm:create").Register(n, fn) },
		},
		"query": {
			before: func(n string, fn func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Query().After("gorm:query").Register(n, fn) },
		},
		"update": {
			before: func(n string, fn func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Update().After("gorm:update").Register(n, fn) },
		},
		"delete": {
			before: func(n string, fn func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Delete().After("gorm:delete").Register(n, fn) },
		},
		"row": {
			before: func(n string, fn func(*gorm.DB)) error { return cb.Row().Before("gorm:row").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Row().After("gorm:row").Register(n, fn) },
		},
		"raw": {
			before: func(n string, fn func(*gorm.DB)) error { return cb.Raw().Before("gorm:raw").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Raw().After("gorm:raw").Register(n, fn) },
		},
	}
	for op, h := range hooks {
		if err := h.before("hh_timing:before_"+op, markStart); err != nil {
			return err
		}
		if err := h.after("hh_timing:after_"+op, t.afterQuery); err != nil {
			return err
		}
	}

	t.logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", t.slowThreshold))
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *DBTracing) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
	}

	if elapsed > t.slowThreshold {
		if span.IsRecording() {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
		}
		t.logger.Warn("Slow database query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", t.slowThreshold),
		)
	}
}
