package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bstset/internal/observability"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

// ErrNoOutput is returned when workload generate has no --out path.
var ErrNoOutput = errors.New("--out is required")

type generateFlags struct {
	out        string
	ops        int
	seed       uint64
	crossCheck bool
}

func newWorkloadCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Generate workload files",
	}

	cmd.AddCommand(newGenerateCommand(opts))

	return cmd
}

func newGenerateCommand(opts *globalOptions) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a deterministic workload as YAML",
		Long: `Write a workload file that bench and crosscheck can replay with --ops-file.
By default the bench mix and workload settings are used; --crosscheck switches
to the insert/remove/checkpoint mix and the crosscheck settings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.out == "" {
				return ErrNoOutput
			}

			sess, err := openSession(cmd, opts, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer sess.close()

			return runGenerate(cmd, flags, sess)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file")
	cmd.Flags().IntVar(&flags.ops, "ops", 0, "number of draws")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "workload seed")
	cmd.Flags().BoolVar(&flags.crossCheck, "crosscheck", false, "use the cross-check mix")

	return cmd
}

func runGenerate(cmd *cobra.Command, flags *generateFlags, sess *session) error {
	ops, seed, mix := sess.cfg.Workload.Ops, sess.cfg.Workload.Seed, sess.cfg.Workload.Mix
	if flags.crossCheck {
		ops, seed, mix = sess.cfg.CrossCheck.Ops, sess.cfg.CrossCheck.Seed, workload.CrossCheckMix()
	}

	if cmd.Flags().Changed("ops") {
		ops = flags.ops
	}

	if cmd.Flags().Changed("seed") {
		seed = flags.seed
	}

	generated, err := workload.Generate(ops, seed, mix)
	if err != nil {
		return fmt.Errorf("generate workload: %w", err)
	}

	err = workload.SaveFile(flags.out, workload.File{Seed: seed, Mix: mix, Ops: generated})
	if err != nil {
		return err
	}

	counts := workload.Counts(generated)
	fmt.Fprintf(sess.out, "wrote %s ops to %s (insert %s, remove %s, contains %s, checkpoint %s)\n",
		humanize.Comma(int64(len(generated))), flags.out,
		humanize.Comma(int64(counts[workload.KindInsert])),
		humanize.Comma(int64(counts[workload.KindRemove])),
		humanize.Comma(int64(counts[workload.KindContains])),
		humanize.Comma(int64(counts[workload.KindCheckpoint])),
	)

	return nil
}
