package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/benz9527/xrbtree/internal/config"
	"github.com/benz9527/xrbtree/internal/stress"
)

const (
	stressCmdUse   = "stress"
	stressCmdShort = "Run randomized tree sessions checked against a sorted slice oracle"
)

// ErrStressFailed is returned when at least one stress session failed.
var ErrStressFailed = errors.New("stress failed")

type stressFlags struct {
	sessions   int
	ops        int
	keySpace   int
	workers    int
	seed       uint64
	checkEvery int
}

func newStressCommand(root *rootOptions) *cobra.Command {
	return buildStressCommand(root, &stressFlags{})
}

func buildStressCommand(root *rootOptions, flags *stressFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   stressCmdUse,
		Short: stressCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			env, err := startApp(ctx, root.configPath)
			if err != nil {
				return err
			}
			runErr := runStress(ctx, cmd, env, flags)
			// The run context may be cancelled already, stop with a fresh one.
			stopErr := env.stop(context.WithoutCancel(ctx))
			if runErr != nil {
				return runErr
			}
			return stopErr
		},
	}
	cmd.Flags().IntVar(&flags.sessions, "sessions", config.DefaultStressSessions, "number of independent sessions")
	cmd.Flags().IntVar(&flags.ops, "ops", config.DefaultStressOps, "operations per session")
	cmd.Flags().IntVar(&flags.keySpace, "key-space", config.DefaultStressKeySpace, "keys are drawn from [0, key-space)")
	cmd.Flags().IntVar(&flags.workers, "workers", config.DefaultStressWorkers, "worker pool size, 0 means GOMAXPROCS")
	cmd.Flags().Uint64Var(&flags.seed, "seed", config.DefaultStressSeed, "base random seed, 0 means random")
	cmd.Flags().IntVar(&flags.checkEvery, "check-every", config.DefaultStressCheckEvery, "validate the tree every n operations")
	return cmd
}

// stressOptions lets the explicitly set flags override the config file.
func stressOptions(cmd *cobra.Command, cfg *config.Config, flags *stressFlags) stress.Options {
	opts := stress.Options{
		StressConfig: cfg.Stress,
		Tree:         cfg.Tree,
	}
	changed := cmd.Flags().Changed
	if changed("sessions") {
		opts.Sessions = flags.sessions
	}
	if changed("ops") {
		opts.Ops = flags.ops
	}
	if changed("key-space") {
		opts.KeySpace = flags.keySpace
	}
	if changed("workers") {
		opts.Workers = flags.workers
	}
	if changed("seed") {
		opts.Seed = flags.seed
	}
	if changed("check-every") {
		opts.CheckEvery = flags.checkEvery
	}
	return opts
}

func runStress(ctx context.Context, cmd *cobra.Command, env *appEnv, flags *stressFlags) error {
	runner, err := stress.NewRunner(stressOptions(cmd, env.cfg, flags), env.logger)
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx)
	if report != nil {
		printStressReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return err
	}
	if reportErr := report.Err(); reportErr != nil {
		return fmt.Errorf("%w: %w", ErrStressFailed, reportErr)
	}
	return nil
}

func printStressReport(out io.Writer, report *stress.Report) {
	failed := report.Failed()
	fmt.Fprintf(out, "seed:     %d\n", report.Seed)
	fmt.Fprintf(out, "host:     %s\n", report.Host)
	fmt.Fprintf(out, "workers:  %d\n", report.Workers)
	fmt.Fprintf(out, "sessions: %d (%d failed)\n", len(report.Sessions), len(failed))
	fmt.Fprintf(out, "ops:      %s\n", humanize.Comma(int64(report.Ops())))
	fmt.Fprintf(out, "checks:   %s\n", humanize.Comma(int64(report.Checks())))
	fmt.Fprintf(out, "elapsed:  %s\n", report.Elapsed)
	if report.RSS > 0 {
		fmt.Fprintf(out, "rss:      %s\n", humanize.IBytes(report.RSS))
	}
	if len(failed) == 0 {
		fmt.Fprintln(out, "result:   PASS")
		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Session", "Seed", "Error"})
	for _, s := range failed {
		tbl.AppendRow(table.Row{s.ID, strconv.FormatUint(s.Seed, 10), s.Err.Error()})
	}
	fmt.Fprintln(out, tbl.Render())
	fmt.Fprintln(out, "result:   FAIL")
}
