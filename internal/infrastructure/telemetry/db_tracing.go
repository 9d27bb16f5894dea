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

	"github.com/erp/fiscalsync/internal/infrastructure/config"
)

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin and marks failed and slow
// statements on their spans. Query variables stay out of spans unless full
// SQL logging is on.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(db.Dialector.Name())}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	slow := &slowQueryMarker{threshold: cfg.DBSlowQueryThresh}
	if err := slow.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("dialect", db.Dialector.Name()),
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", cfg.DBSlowQueryThresh),
	)
	return nil
}

type slowQueryMarker struct {
	threshold time.Duration
}

func (m *slowQueryMarker) register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("fiscal_timing:before_create", m.before),
		cb.Query().Before("gorm:query").Register("fiscal_timing:before_query", m.before),
		cb.Update().Before("gorm:update").Register("fiscal_timing:before_update", m.before),
		cb.Delete().Before("gorm:delete").Register("fiscal_timing:before_delete", m.before),
		cb.Row().Before("gorm:row").Register("fiscal_timing:before_row", m.before),
		cb.Raw().Before("gorm:raw").Register("fiscal_timing:before_raw", m.before),
		cb.Create().After("gorm:create").Register("fiscal_timing:after_create", m.after),
		cb.Query().After("gorm:query").Register("fiscal_timing:after_query", m.after),
		cb.Update().After("gorm:update").Register("fiscal_timing:after_update", m.after),
		cb.Delete().After("gorm:delete").Register("fiscal_timing:after_delete", m.after),
		cb.Row().After("gorm:row").Register("fiscal_timing:after_row", m.after),
		cb.Raw().After("gorm:raw").Register("fiscal_timing:after_raw", m.after),
	)
}

func (m *slowQueryMarker) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (m *slowQueryMarker) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || m.threshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > m.threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("threshold_ms", m.threshold.Milliseconds()),
		))
	}
}
