// Package commands implements CLI command handlers for bstset.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bstset/internal/config"
	"github.com/Sumatoshi-tech/bstset/internal/observability"
	"github.com/Sumatoshi-tech/bstset/pkg/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
	quiet      bool
	logJSON    bool
}

// NewRootCommand creates the bstset command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "bstset",
		Short: "bstset - ordered-set BST engines, benchmarks and cross-checks",
		Long: `bstset drives two binary search tree set engines, an owned-node tree
and a guarded arena tree, against B-tree references.

Commands:
  bench       Time workload replays per backend
  crosscheck  Replay a workload on several backends and verify they agree
  workload    Generate workload files`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default .bstset.yaml in CWD or $HOME)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit JSON logs")

	rootCmd.AddCommand(newBenchCommand(opts))
	rootCmd.AddCommand(newCrossCheckCommand(opts))
	rootCmd.AddCommand(newWorkloadCommand(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// session bundles what a command needs once configuration is resolved.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	out       io.Writer
	opsFile   string
}

func (s *session) logger() *slog.Logger {
	return s.providers.Logger
}

// close flushes telemetry, logging rather than returning a failure.
func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.logger().Warn("observability shutdown failed", "error", err)
	}
}

func openSession(cmd *cobra.Command, opts *globalOptions, mode observability.AppMode) (*session, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	obsCfg, err := observabilityConfig(cfg, opts, mode)
	if err != nil {
		return nil, err
	}

	obsCfg.LogOutput = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &session{cfg: cfg, providers: providers, out: cmd.OutOrStdout()}, nil
}

func observabilityConfig(cfg *config.Config, opts *globalOptions, mode observability.AppMode) (observability.Config, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return observability.Config{}, fmt.Errorf("log level: %w", err)
	}

	switch {
	case opts.quiet:
		level = slog.LevelError
	case opts.verbose:
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceName = cfg.Telemetry.ServiceName
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Log.JSON || opts.logJSON

	return obsCfg, nil
}
