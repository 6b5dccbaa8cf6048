package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	instrumentationName = "bstset"

	attrAppMode = "bstset.mode"
)

// Providers holds the initialized observability providers.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes pending spans and metrics. It is bounded by
	// Config.ShutdownTimeout.
	Shutdown func(ctx context.Context) error
}

// Exporting reports whether the providers send telemetry to a collector.
func (cfg Config) Exporting() bool {
	return cfg.OTLPEndpoint != ""
}

// Init sets up the global tracer and meter providers and the run logger. A
// bench or cross-check run is one short process, so every span is sampled
// and nothing is exported unless an OTLP endpoint is configured.
func Init(cfg Config) (Providers, error) {
	logger := buildLogger(cfg)

	if !cfg.Exporting() {
		return Providers{
			Tracer:   nooptrace.NewTracerProvider().Tracer(instrumentationName),
			Meter:    noopmetric.NewMeterProvider().Meter(instrumentationName),
			Logger:   logger,
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	ctx := context.Background()

	res, err := resource.New(ctx, resource.WithAttributes(runAttributes(cfg)...))
	if err != nil {
		return Providers{}, fmt.Errorf("build otel resource: %w", err)
	}

	spanExporter, err := otlptracegrpc.New(ctx, traceOptions(cfg)...)
	if err != nil {
		return Providers{}, fmt.Errorf("create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions(cfg)...)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("create metric exporter: %w", err), spanExporter.Shutdown(ctx))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Debug("exporting telemetry", "endpoint", cfg.OTLPEndpoint, "insecure", cfg.OTLPInsecure)

	return Providers{
		Tracer: tp.Tracer(instrumentationName),
		Meter:  mp.Meter(instrumentationName),
		Logger: logger,
		Shutdown: func(shutdownCtx context.Context) error {
			timeout := cfg.ShutdownTimeout
			if timeout <= 0 {
				timeout = defaultShutdownTimeout
			}

			deadlineCtx, cancel := context.WithTimeout(shutdownCtx, timeout)
			defer cancel()

			return errors.Join(tp.Shutdown(deadlineCtx), mp.Shutdown(deadlineCtx))
		},
	}, nil
}

func runAttributes(cfg Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		attribute.String(attrAppMode, string(cfg.Mode)),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	return attrs
}

func traceOptions(cfg Config) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}

	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
	}

	return opts
}

func metricOptions(cfg Config) []otlpmetricgrpc.Option {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}

	if cfg.OTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
	}

	return opts
}

func buildLogger(cfg Config) *slog.Logger {
	var out io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		out = cfg.LogOutput
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler = slog.NewTextHandler(out, handlerOpts)
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.New(NewTracingHandler(inner, cfg.ServiceName, cfg.Mode))
}

// ParseOTLPHeaders parses the telemetry.otlp_headers setting, a list of
// "key=value" pairs separated by commas. Pairs without "=" or with an empty
// key are ignored; nil is returned when nothing remains.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")

		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[key] = strings.TrimSpace(value)
	}

	return headers
}
