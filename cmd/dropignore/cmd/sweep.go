package cmd

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/dropignore/internal/engine"
	derrors "github.com/Aman-CERP/dropignore/internal/errors"
	"github.com/Aman-CERP/dropignore/internal/flagstore"
	"github.com/Aman-CERP/dropignore/internal/ui"
)

type sweepOptions struct {
	rules   ruleOptions
	dryRun  bool
	verbose bool
	workers int
}

func newSweepCmd() *cobra.Command {
	var opts sweepOptions

	cmd := &cobra.Command{
		Use:   "sweep <path>",
		Short: "Apply the rules to everything already under a directory",
		Long: `Walk a directory tree once and set the ignored flag on every path that
matches a rule. Matched directories are not descended into, since Dropbox
ignores their contents along with them.

Use --dry-run to see what would change without touching any flag.`,
		Example: `  dropignore sweep ~/Dropbox/code
  dropignore sweep --dry-run --verbose .`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, args[0], opts)
		},
	}

	opts.rules.register(cmd)
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show what would change without changing it")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Also list paths that are left alone")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "Concurrent flag updates")

	return cmd
}

func runSweep(cmd *cobra.Command, path string, opts sweepOptions) error {
	if opts.workers < 1 {
		return derrors.New(derrors.ErrCodeInvalidInput, "--workers must be at least 1", nil)
	}
	root, err := resolveDir(path)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := opts.rules.apply(cfg); err != nil {
		return err
	}

	evaluator, err := loadEvaluator(cmd, cfg, root)
	if err != nil {
		return err
	}

	var store flagstore.Store
	if opts.dryRun {
		store = flagstore.NewMemoryStore()
	} else if store, err = openStore(cfg); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng := engine.New(evaluator, store, engine.WithLogger(quietLogger()))
	reporter := ui.NewReporter(ui.NewConfig(cmd.OutOrStdout(), ui.WithVerbose(opts.verbose)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := sweep(ctx, root, evaluator, eng, reporter, opts); err != nil {
		return err
	}

	stats := eng.Stats()
	reporter.Complete(ui.Summary{
		Visited:   int(stats.Selected + stats.Deselected + stats.Untouched + stats.Failures),
		Ignored:   int(stats.Selected),
		Unignored: int(stats.Deselected),
		Untouched: int(stats.Untouched),
		Failed:    int(stats.Failures),
		DryRun:    opts.dryRun,
		Duration:  time.Since(start),
	})

	if stats.Failures > 0 {
		return derrors.New(derrors.ErrCodeFlagStore, "some flags could not be updated", nil).
			WithDetail("failed", strconv.FormatUint(stats.Failures, 10))
	}
	return nil
}

// sweep walks root and dispatches one decision per path. Walking stays
// sequential so selected directories can be pruned; flag updates run on
// up to opts.workers goroutines.
func sweep(ctx context.Context, root string, eval engine.Evaluator, eng *engine.Engine, reporter *ui.Reporter, opts sweepOptions) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := gctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			reporter.Failure(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		decision := eval.Evaluate(path)
		g.Go(func() error {
			if err := eng.Dispatch(gctx, path, decision); err != nil {
				reporter.Failure(path, err)
				return nil
			}
			reporter.Action(path, actionFor(decision), opts.dryRun)
			return nil
		})

		if decision == engine.Select && d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})

	waitErr := g.Wait()
	if walkErr != nil {
		if ctx.Err() != nil {
			return derrors.New(derrors.ErrCodeInternal, "sweep interrupted", ctx.Err())
		}
		return derrors.IOError("failed to walk directory", walkErr)
	}
	return waitErr
}

func actionFor(d engine.Decision) ui.Action {
	switch d {
	case engine.Select:
		return ui.ActionIgnore
	case engine.Deselect:
		return ui.ActionUnignore
	default:
		return ui.ActionNone
	}
}
