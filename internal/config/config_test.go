package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bstset/internal/config"
	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".bstset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, workload.BenchMix(), cfg.Workload.Mix)
	assert.Equal(t, []string{"btree", "owned", "arena"}, cfg.CrossCheck.Backends)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
workload:
  ops: 500
  seed: 42
  mix:
    checkpoint: 3
bench:
  backends: [arena, owned]
  rounds: 7
  chart: bench.html
crosscheck:
  ops: 2000
  backends: [tidwall, arena]
  hibernate_arena: true
log:
  level: debug
  json: true
telemetry:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Workload.Ops)
	assert.Equal(t, uint64(42), cfg.Workload.Seed)
	assert.Equal(t, 3, cfg.Workload.Mix.Checkpoint)
	assert.Equal(t, 2, cfg.Workload.Mix.InsertRandom, "unset weights keep their defaults")
	assert.Equal(t, []string{engines.Arena, engines.Owned}, cfg.Bench.Backends)
	assert.Equal(t, 7, cfg.Bench.Rounds)
	assert.Equal(t, "bench.html", cfg.Bench.Chart)
	assert.Equal(t, 2000, cfg.CrossCheck.Ops)
	assert.True(t, cfg.CrossCheck.HibernateArena)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BSTSET_CROSSCHECK_OPS", "123")
	t.Setenv("BSTSET_LOG_LEVEL", "warn")

	cfg, err := config.LoadConfig(writeConfig(t, "crosscheck:\n  ops: 50\n"))
	require.NoError(t, err)

	assert.Equal(t, 123, cfg.CrossCheck.Ops)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "workload: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		want   error
	}{
		{name: "ops", mutate: func(cfg *config.Config) { cfg.Workload.Ops = 0 }, want: config.ErrInvalidWorkloadOps},
		{name: "empty mix", mutate: func(cfg *config.Config) { cfg.Workload.Mix = workload.Mix{} }, want: workload.ErrEmptyMix},
		{
			name:   "negative weight",
			mutate: func(cfg *config.Config) { cfg.Workload.Mix.RemoveRandom = -1 },
			want:   config.ErrInvalidMix,
		},
		{name: "rounds", mutate: func(cfg *config.Config) { cfg.Bench.Rounds = -2 }, want: config.ErrInvalidBenchRounds},
		{name: "no bench backends", mutate: func(cfg *config.Config) { cfg.Bench.Backends = nil }, want: config.ErrNoBenchBackends},
		{
			name:   "unknown backend",
			mutate: func(cfg *config.Config) { cfg.Bench.Backends = []string{"owned", "splay"} },
			want:   engines.ErrUnknownBackend,
		},
		{
			name:   "duplicate backend",
			mutate: func(cfg *config.Config) { cfg.CrossCheck.Backends = []string{"owned", "owned"} },
			want:   config.ErrDuplicateBackend,
		},
		{
			name:   "one crosscheck backend",
			mutate: func(cfg *config.Config) { cfg.CrossCheck.Backends = []string{"owned"} },
			want:   config.ErrTooFewCrossCheckBackends,
		},
		{name: "crosscheck ops", mutate: func(cfg *config.Config) { cfg.CrossCheck.Ops = 0 }, want: config.ErrInvalidCrossCheckOps},
		{name: "log level", mutate: func(cfg *config.Config) { cfg.Log.Level = "loud" }, want: config.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
