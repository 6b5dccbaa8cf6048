// Package config loads bstset settings from a YAML file, BSTSET_* environment
// variables and built-in defaults.
package config

import (
	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

// Workload defaults.
const (
	DefaultWorkloadOps  = 100000
	DefaultWorkloadSeed = 1
)

// Bench defaults.
const (
	DefaultBenchRounds      = 3
	DefaultBenchChart       = ""
	DefaultBenchMetricsFile = ""
)

// Cross-check defaults.
const (
	DefaultCrossCheckOps            = 10000
	DefaultCrossCheckSeed           = 1
	DefaultCrossCheckHibernateArena = false
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultTelemetryOTLPEndpoint = ""
	DefaultTelemetryOTLPInsecure = false
	DefaultTelemetryServiceName  = "bstset"
)

// DefaultBenchBackends returns the backends timed by default.
func DefaultBenchBackends() []string {
	return []string{engines.Owned, engines.Arena, engines.BTree, engines.Tidwall}
}

// DefaultCrossCheckBackends returns the backends cross-checked by default,
// reference first.
func DefaultCrossCheckBackends() []string {
	return []string{engines.BTree, engines.Owned, engines.Arena}
}

// DefaultMix returns the default workload mix.
func DefaultMix() workload.Mix {
	return workload.BenchMix()
}
