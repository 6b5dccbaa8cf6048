package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/internal/harness"
	"github.com/Sumatoshi-tech/bstset/internal/observability"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

// ErrCrossCheckFailed is returned when the backends disagree.
var ErrCrossCheckFailed = errors.New("cross-check failed")

type crossCheckFlags struct {
	ops            int
	seed           uint64
	backends       []string
	opsFile        string
	hibernateArena bool
}

func newCrossCheckCommand(opts *globalOptions) *cobra.Command {
	flags := &crossCheckFlags{}

	cmd := &cobra.Command{
		Use:   "crosscheck",
		Short: "Replay a workload on several backends and verify they agree",
		Long: `Replay a deterministic insert/remove/checkpoint workload on every selected
backend. At each checkpoint, every iterated element must be contained in all
backends, iteration must be strictly ascending and all sizes must agree.
The first backend is the reference.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, opts, observability.ModeCrossCheck)
			if err != nil {
				return err
			}
			defer sess.close()

			applyCrossCheckFlags(cmd, flags, sess)

			err = sess.cfg.Validate()
			if err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			return runCrossCheck(cmd.Context(), sess)
		},
	}

	cmd.Flags().IntVar(&flags.ops, "ops", 0, "number of generated operations")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "workload seed")
	cmd.Flags().StringSliceVarP(&flags.backends, "backend", "b", nil, "backends to compare, reference first")
	cmd.Flags().StringVar(&flags.opsFile, "ops-file", "", "replay a workload file instead of generating one")
	cmd.Flags().BoolVar(&flags.hibernateArena, "hibernate-arena", false, "hibernate and boot arena sets at every checkpoint")

	return cmd
}

func applyCrossCheckFlags(cmd *cobra.Command, flags *crossCheckFlags, sess *session) {
	changed := cmd.Flags().Changed

	if changed("ops") {
		sess.cfg.CrossCheck.Ops = flags.ops
	}

	if changed("seed") {
		sess.cfg.CrossCheck.Seed = flags.seed
	}

	if changed("backend") {
		sess.cfg.CrossCheck.Backends = flags.backends
	}

	if changed("hibernate-arena") {
		sess.cfg.CrossCheck.HibernateArena = flags.hibernateArena
	}

	if changed("ops-file") {
		sess.opsFile = flags.opsFile
	}
}

func runCrossCheck(ctx context.Context, sess *session) error {
	cfg := sess.cfg.CrossCheck

	backends, err := engines.Resolve(cfg.Backends)
	if err != nil {
		return err
	}

	ops, err := loadOrGenerate(sess, cfg.Ops, cfg.Seed, workload.CrossCheckMix())
	if err != nil {
		return err
	}

	sets := make([]harness.Named, 0, len(backends))
	for _, backend := range backends {
		sets = append(sets, harness.Named{Name: backend.Name, Set: backend.New()})
	}

	metrics, err := observability.NewHarnessMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	stats, err := harness.CrossCheck(ctx, sets, ops, harness.CrossCheckOptions{
		HibernateArena: cfg.HibernateArena,
		Metrics:        metrics,
		Logger:         sess.logger(),
	})

	var mismatch *harness.MismatchError
	if errors.As(err, &mismatch) {
		color.New(color.FgRed).Fprintf(sess.out, "FAIL %s\n", mismatch.Error())
		fmt.Fprint(sess.out, mismatch.Details())

		return fmt.Errorf("%w: %w", ErrCrossCheckFailed, err)
	}

	if err != nil {
		return fmt.Errorf("crosscheck: %w", err)
	}

	color.New(color.FgGreen).Fprintf(sess.out, "PASS %v\n", cfg.Backends)
	fmt.Fprintf(sess.out, "  ops: %s  checkpoints: %s  final size: %s",
		humanize.Comma(int64(stats.Ops)), humanize.Comma(int64(stats.Checkpoints)), humanize.Comma(int64(stats.FinalLen)))

	if stats.Hibernations > 0 {
		fmt.Fprintf(sess.out, "  hibernations: %s", humanize.Comma(int64(stats.Hibernations)))
	}

	fmt.Fprintln(sess.out)

	return nil
}
