package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

// Config is the top-level configuration struct for bstset.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Workload   WorkloadConfig   `mapstructure:"workload"`
	Bench      BenchConfig      `mapstructure:"bench"`
	CrossCheck CrossCheckConfig `mapstructure:"crosscheck"`
	Log        LogConfig        `mapstructure:"log"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// WorkloadConfig holds the bench workload generator settings.
type WorkloadConfig struct {
	Ops  int          `mapstructure:"ops"`
	Seed uint64       `mapstructure:"seed"`
	Mix  workload.Mix `mapstructure:"mix"`
}

// BenchConfig holds timing harness settings.
type BenchConfig struct {
	Backends    []string `mapstructure:"backends"`
	Rounds      int      `mapstructure:"rounds"`
	Chart       string   `mapstructure:"chart"`
	MetricsFile string   `mapstructure:"metrics_file"`
}

// CrossCheckConfig holds consistency harness settings.
type CrossCheckConfig struct {
	Ops            int      `mapstructure:"ops"`
	Seed           uint64   `mapstructure:"seed"`
	Backends       []string `mapstructure:"backends"`
	HibernateArena bool     `mapstructure:"hibernate_arena"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	ServiceName  string `mapstructure:"service_name"`
}

// minCrossCheckBackends is the smallest number of sets worth comparing.
const minCrossCheckBackends = 2

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkloadOps indicates the workload op count is not positive.
	ErrInvalidWorkloadOps = errors.New("workload.ops must be positive")
	// ErrInvalidMix indicates the workload mix is unusable.
	ErrInvalidMix = errors.New("workload.mix is invalid")
	// ErrInvalidBenchRounds indicates the round count is not positive.
	ErrInvalidBenchRounds = errors.New("bench.rounds must be positive")
	// ErrNoBenchBackends indicates an empty bench backend list.
	ErrNoBenchBackends = errors.New("bench.backends must not be empty")
	// ErrInvalidCrossCheckOps indicates the cross-check op count is not positive.
	ErrInvalidCrossCheckOps = errors.New("crosscheck.ops must be positive")
	// ErrTooFewCrossCheckBackends indicates fewer than two cross-check backends.
	ErrTooFewCrossCheckBackends = errors.New("crosscheck.backends needs at least two entries")
	// ErrDuplicateBackend indicates a backend listed twice.
	ErrDuplicateBackend = errors.New("backend listed twice")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("log.level must be debug, info, warn or error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	workloadErr := c.validateWorkload()
	if workloadErr != nil {
		return workloadErr
	}

	benchErr := c.validateBench()
	if benchErr != nil {
		return benchErr
	}

	crossErr := c.validateCrossCheck()
	if crossErr != nil {
		return crossErr
	}

	_, levelErr := c.Log.SlogLevel()

	return levelErr
}

func (c *Config) validateWorkload() error {
	if c.Workload.Ops <= 0 {
		return ErrInvalidWorkloadOps
	}

	mixErr := c.Workload.Mix.Validate()
	if mixErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMix, mixErr)
	}

	return nil
}

func (c *Config) validateBench() error {
	if c.Bench.Rounds <= 0 {
		return ErrInvalidBenchRounds
	}

	if len(c.Bench.Backends) == 0 {
		return ErrNoBenchBackends
	}

	return validateBackends("bench.backends", c.Bench.Backends)
}

func (c *Config) validateCrossCheck() error {
	if c.CrossCheck.Ops <= 0 {
		return ErrInvalidCrossCheckOps
	}

	if len(c.CrossCheck.Backends) < minCrossCheckBackends {
		return ErrTooFewCrossCheckBackends
	}

	return validateBackends("crosscheck.backends", c.CrossCheck.Backends)
}

func validateBackends(key string, names []string) error {
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if !engines.Known(name) {
			return fmt.Errorf("%s: %w: %q", key, engines.ErrUnknownBackend, name)
		}

		if seen[name] {
			return fmt.Errorf("%s: %w: %q", key, ErrDuplicateBackend, name)
		}

		seen[name] = true
	}

	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
}
