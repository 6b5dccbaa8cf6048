package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// TextfileExporter collects OTel instruments into a private Prometheus
// registry and writes them in the node_exporter textfile format.
type TextfileExporter struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
}

// NewTextfileExporter creates an exporter with its own registry, so several
// exporters can coexist without collector conflicts.
func NewTextfileExporter() (*TextfileExporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &TextfileExporter{
		registry: registry,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
	}, nil
}

// Meter returns a meter whose instruments end up in the textfile.
func (te *TextfileExporter) Meter() metric.Meter {
	return te.provider.Meter(instrumentationName)
}

// Gatherer exposes the underlying registry.
func (te *TextfileExporter) Gatherer() prometheus.Gatherer {
	return te.registry
}

// WriteTextfile atomically writes the current metric values to path.
func (te *TextfileExporter) WriteTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, te.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}

// Shutdown releases the meter provider.
func (te *TextfileExporter) Shutdown(ctx context.Context) error {
	err := te.provider.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown textfile exporter: %w", err)
	}

	return nil
}
