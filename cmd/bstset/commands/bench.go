package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/internal/harness"
	"github.com/Sumatoshi-tech/bstset/internal/observability"
	"github.com/Sumatoshi-tech/bstset/internal/report"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

// benchFlags holds bench overrides; zero values defer to the config.
type benchFlags struct {
	ops         int
	seed        uint64
	rounds      int
	backends    []string
	opsFile     string
	chart       string
	metricsFile string
}

func newBenchCommand(opts *globalOptions) *cobra.Command {
	flags := &benchFlags{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time workload replays per backend",
		Long: `Generate a deterministic workload (or load one with --ops-file) and replay it
against a fresh set of every selected backend, --rounds times each.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, opts, observability.ModeBench)
			if err != nil {
				return err
			}
			defer sess.close()

			applyBenchFlags(cmd, flags, sess)

			err = sess.cfg.Validate()
			if err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			return runBench(cmd.Context(), sess)
		},
	}

	cmd.Flags().IntVar(&flags.ops, "ops", 0, "number of generated operations")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "workload seed")
	cmd.Flags().IntVar(&flags.rounds, "rounds", 0, "replays per backend")
	cmd.Flags().StringSliceVarP(&flags.backends, "backend", "b", nil, "backends to time: "+fmt.Sprint(engines.Names()))
	cmd.Flags().StringVar(&flags.opsFile, "ops-file", "", "replay a workload file instead of generating one")
	cmd.Flags().StringVar(&flags.chart, "chart", "", "write an HTML bar chart to this path")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")

	return cmd
}

func applyBenchFlags(cmd *cobra.Command, flags *benchFlags, sess *session) {
	changed := cmd.Flags().Changed

	if changed("ops") {
		sess.cfg.Workload.Ops = flags.ops
	}

	if changed("seed") {
		sess.cfg.Workload.Seed = flags.seed
	}

	if changed("rounds") {
		sess.cfg.Bench.Rounds = flags.rounds
	}

	if changed("backend") {
		sess.cfg.Bench.Backends = flags.backends
	}

	if changed("chart") {
		sess.cfg.Bench.Chart = flags.chart
	}

	if changed("metrics-file") {
		sess.cfg.Bench.MetricsFile = flags.metricsFile
	}

	if changed("ops-file") {
		sess.opsFile = flags.opsFile
	}
}

func loadOrGenerate(sess *session, ops int, seed uint64, mix workload.Mix) ([]workload.Op, error) {
	if sess.opsFile != "" {
		file, err := workload.LoadFile(sess.opsFile)
		if err != nil {
			return nil, err
		}

		sess.logger().Info("workload loaded", "path", sess.opsFile, "ops", len(file.Ops), "seed", file.Seed)

		return file.Ops, nil
	}

	generated, err := workload.Generate(ops, seed, mix)
	if err != nil {
		return nil, fmt.Errorf("generate workload: %w", err)
	}

	sess.logger().Info("workload generated", "draws", ops, "ops", len(generated), "seed", seed)

	return generated, nil
}

func runBench(ctx context.Context, sess *session) error {
	cfg := sess.cfg

	backends, err := engines.Resolve(cfg.Bench.Backends)
	if err != nil {
		return err
	}

	ops, err := loadOrGenerate(sess, cfg.Workload.Ops, cfg.Workload.Seed, cfg.Workload.Mix)
	if err != nil {
		return err
	}

	meter := sess.providers.Meter

	var textfile *observability.TextfileExporter

	if cfg.Bench.MetricsFile != "" {
		textfile, err = observability.NewTextfileExporter()
		if err != nil {
			return err
		}

		defer func() {
			shutdownErr := textfile.Shutdown(context.Background())
			if shutdownErr != nil {
				sess.logger().Warn("metrics shutdown failed", "error", shutdownErr)
			}
		}()

		meter = textfile.Meter()
	}

	metrics, err := observability.NewHarnessMetrics(meter)
	if err != nil {
		return err
	}

	results, err := harness.Bench(ctx, backends, ops, harness.BenchOptions{
		Rounds:  cfg.Bench.Rounds,
		Metrics: metrics,
		Logger:  sess.logger(),
	})
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}

	fmt.Fprintf(sess.out, "Workload: %s ops, %d rounds\n", humanize.Comma(int64(len(ops))), cfg.Bench.Rounds)

	err = report.WriteTable(sess.out, results)
	if err != nil {
		return err
	}

	if cfg.Bench.Chart != "" {
		err = report.WriteChartFile(cfg.Bench.Chart, results)
		if err != nil {
			return err
		}

		sess.logger().Info("chart written", "path", cfg.Bench.Chart)
	}

	if textfile != nil {
		err = textfile.WriteTextfile(cfg.Bench.MetricsFile)
		if err != nil {
			return err
		}

		sess.logger().Info("metrics written", "path", cfg.Bench.MetricsFile)
	}

	return nil
}
