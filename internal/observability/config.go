// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the bstset commands.
package observability

import (
	"io"
	"log/slog"
	"time"
)

// AppMode identifies the command that launched the process.
type AppMode string

const (
	// ModeBench is the timing harness.
	ModeBench AppMode = "bench"
	// ModeCrossCheck is the consistency harness.
	ModeCrossCheck AppMode = "crosscheck"
	// ModeCLI covers every other command.
	ModeCLI AppMode = "cli"
)

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "bstset"

	defaultShutdownTimeout = 5 * time.Second
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// ShutdownTimeout bounds the final flush to the collector.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:     defaultServiceName,
		Mode:            ModeCLI,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}
