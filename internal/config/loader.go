package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".bstset"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for bstset settings.
const envPrefix = "BSTSET"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or env var is set.
func Default() *Config {
	return &Config{
		Workload: WorkloadConfig{Ops: DefaultWorkloadOps, Seed: DefaultWorkloadSeed, Mix: DefaultMix()},
		Bench: BenchConfig{
			Backends:    DefaultBenchBackends(),
			Rounds:      DefaultBenchRounds,
			Chart:       DefaultBenchChart,
			MetricsFile: DefaultBenchMetricsFile,
		},
		CrossCheck: CrossCheckConfig{
			Ops:            DefaultCrossCheckOps,
			Seed:           DefaultCrossCheckSeed,
			Backends:       DefaultCrossCheckBackends(),
			HibernateArena: DefaultCrossCheckHibernateArena,
		},
		Log: LogConfig{Level: DefaultLogLevel, JSON: DefaultLogJSON},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: DefaultTelemetryOTLPEndpoint,
			OTLPInsecure: DefaultTelemetryOTLPInsecure,
			ServiceName:  DefaultTelemetryServiceName,
		},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	mix := DefaultMix()

	viperCfg.SetDefault("workload.ops", DefaultWorkloadOps)
	viperCfg.SetDefault("workload.seed", DefaultWorkloadSeed)
	viperCfg.SetDefault("workload.mix.insert_random", mix.InsertRandom)
	viperCfg.SetDefault("workload.mix.remove_random", mix.RemoveRandom)
	viperCfg.SetDefault("workload.mix.contains_random", mix.ContainsRandom)
	viperCfg.SetDefault("workload.mix.insert_existing", mix.InsertExisting)
	viperCfg.SetDefault("workload.mix.remove_existing", mix.RemoveExisting)
	viperCfg.SetDefault("workload.mix.contains_existing", mix.ContainsExisting)
	viperCfg.SetDefault("workload.mix.checkpoint", mix.Checkpoint)

	viperCfg.SetDefault("bench.backends", DefaultBenchBackends())
	viperCfg.SetDefault("bench.rounds", DefaultBenchRounds)
	viperCfg.SetDefault("bench.chart", DefaultBenchChart)
	viperCfg.SetDefault("bench.metrics_file", DefaultBenchMetricsFile)

	viperCfg.SetDefault("crosscheck.ops", DefaultCrossCheckOps)
	viperCfg.SetDefault("crosscheck.seed", DefaultCrossCheckSeed)
	viperCfg.SetDefault("crosscheck.backends", DefaultCrossCheckBackends())
	viperCfg.SetDefault("crosscheck.hibernate_arena", DefaultCrossCheckHibernateArena)

	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryOTLPInsecure)
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.service_name", DefaultTelemetryServiceName)
}
