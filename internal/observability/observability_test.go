package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/bstset/internal/observability"
)

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)

	ctx, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()

	assert.NotNil(t, ctx)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LoggerWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogOutput = &buf
	cfg.Mode = observability.ModeBench
	cfg.ServiceVersion = "1.2.3"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.Info("round done", "backend", "arena")
	providers.Logger.Debug("filtered out")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "round done", record["msg"])
	assert.Equal(t, "arena", record["backend"])
	assert.Equal(t, "bstset", record["service"])
	assert.Equal(t, "bench", record["mode"])
}

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "svc", observability.ModeCrossCheck))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	logger.InfoContext(trace.ContextWithSpanContext(context.Background(), sc), "checkpoint consistent")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, "crosscheck", record["mode"])
}

func TestTracingHandler_WithGroupKeepsServiceTopLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(observability.NewTracingHandler(inner, "svc", observability.ModeCLI))

	logger.WithGroup("run").Info("grouped", "ops", 10)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "svc", record["service"])

	group, ok := record["run"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 10, group["ops"], 0)
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Nil(t, observability.ParseOTLPHeaders(" =orphan, ,"))
	assert.Equal(t,
		map[string]string{"api-key": "abc", "tenant": "x"},
		observability.ParseOTLPHeaders("api-key=abc, tenant = x"),
	)
}

func TestHarnessMetrics_WriteTextfile(t *testing.T) {
	t.Parallel()

	exporter, err := observability.NewTextfileExporter()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, exporter.Shutdown(context.Background())) })

	metrics, err := observability.NewHarnessMetrics(exporter.Meter())
	require.NoError(t, err)

	ctx := context.Background()

	done := metrics.TrackRound(ctx, "arena")
	metrics.RecordRound(ctx, "arena", 1000, 3*time.Millisecond)
	done()
	metrics.RecordCheckpoint(ctx, observability.StatusOK)
	metrics.RecordArenaSlots(ctx, "arena", 512)

	path := filepath.Join(t.TempDir(), "bench.prom")
	require.NoError(t, exporter.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "bstset_ops")
	assert.Contains(t, text, "bstset_checkpoints")
	assert.Contains(t, text, `backend="arena"`)
}

func TestHarnessMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	metrics, err := observability.NewHarnessMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordRound(context.Background(), "owned", 10, time.Millisecond)
}

func TestConfig_Exporting(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	assert.False(t, cfg.Exporting())
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)

	cfg.OTLPEndpoint = "localhost:4317"
	assert.True(t, cfg.Exporting())
}

func TestTracingHandler_OmitsEmptyMode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(slog.NewJSONHandler(&buf, nil), "svc", ""))
	logger.Info("no span")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "svc", record["service"])
	assert.NotContains(t, record, "mode")
	assert.NotContains(t, record, "trace_id")
}
