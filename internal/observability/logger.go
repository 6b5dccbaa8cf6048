package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrMode    = "mode"
)

// TracingHandler is an [slog.Handler] that tags records with the run's
// service and mode, and with the trace and span IDs of the bench or
// cross-check span active in the record's context.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner. The run attributes are bound to inner before
// any group is opened, so they stay top-level.
func NewTracingHandler(inner slog.Handler, service string, appMode AppMode) *TracingHandler {
	runAttrs := []slog.Attr{slog.String(attrService, service)}
	if appMode != "" {
		runAttrs = append(runAttrs, slog.String(attrMode, string(appMode)))
	}

	return &TracingHandler{inner: inner.WithAttrs(runAttrs)}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle adds the span IDs, if any, and delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(slog.String(attrTraceID, sc.TraceID().String()), slog.String(attrSpanID, sc.SpanID().String()))
	}

	err := th.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}
