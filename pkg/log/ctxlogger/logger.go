// Package ctxlogger binds correlation and trace ids carried by a context to a zap logger.
package ctxlogger

import (
	"context"

	"github.com/smallbiznis/rechargedesk/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WithContext returns base annotated with the ids found in ctx.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	fields := Fields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// Fields lists the correlation and trace fields for ctx.
func Fields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	var fields []zap.Field
	if id := correlation.ID(ctx); id != "" {
		fields = append(fields,
			zap.String("correlation_id", id),
			zap.String("correlation_source", string(correlation.SourceOf(ctx))),
		)
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return fields
}
