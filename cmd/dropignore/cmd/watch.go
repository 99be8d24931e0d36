package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/dropignore/internal/config"
	"github.com/Aman-CERP/dropignore/internal/engine"
	derrors "github.com/Aman-CERP/dropignore/internal/errors"
	"github.com/Aman-CERP/dropignore/internal/ignorefile"
	"github.com/Aman-CERP/dropignore/internal/lock"
	"github.com/Aman-CERP/dropignore/internal/logging"
	"github.com/Aman-CERP/dropignore/internal/output"
	"github.com/Aman-CERP/dropignore/internal/pathinfo"
	"github.com/Aman-CERP/dropignore/internal/watcher"
)

// ruleOptions are the flags shared by watch and sweep.
type ruleOptions struct {
	ignoreFile string
	unmatched  string
}

func (o *ruleOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.ignoreFile, "ignore-file", "", "Rule file (default: <path>/.dropignore)")
	cmd.Flags().StringVar(&o.unmatched, "unmatched", "", "Decision for paths no rule matches: none or deselect")
}

// apply overrides cfg with the flags that were set.
func (o ruleOptions) apply(cfg *config.Config) error {
	if o.ignoreFile != "" {
		abs, err := filepath.Abs(o.ignoreFile)
		if err != nil {
			return derrors.New(derrors.ErrCodeInvalidPath, "cannot resolve --ignore-file", err)
		}
		cfg.Watch.IgnoreFile = abs
	}
	if o.unmatched != "" {
		cfg.Rules.Unmatched = o.unmatched
	}
	if err := cfg.Validate(); err != nil {
		return derrors.New(derrors.ErrCodeInvalidInput, "invalid flag", err)
	}
	return nil
}

// loadEvaluator compiles the rule file for root. Skipped lines are printed
// to stderr; a file with no usable rule is an error.
func loadEvaluator(cmd *cobra.Command, cfg *config.Config, root string) (engine.RuleEvaluator, error) {
	unmatched, err := engine.ParseDecision(cfg.Rules.Unmatched)
	if err != nil {
		return engine.RuleEvaluator{}, derrors.New(derrors.ErrCodeConfigInvalid, "invalid rules.unmatched", err)
	}

	set, lineErrs, err := ignorefile.LoadRequired(cfg.IgnoreFilePath(root), root, pathinfo.OS{})
	printLineErrors(cmd.ErrOrStderr(), lineErrs)
	if err != nil {
		return engine.RuleEvaluator{}, err
	}
	return engine.RuleEvaluator{Rules: set, Unmatched: unmatched}, nil
}

func newWatchCmd() *cobra.Command {
	var (
		rules ruleOptions
		poll  bool
	)

	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Flag new paths under a directory as they appear",
		Long: `Watch a directory tree and apply the .dropignore rules to every path that
is created or moved inside it.

Created paths that match a rule are marked ignored. A moved path is only
touched when its old and new locations decide differently; then the new
location gets its decision.

Only one watch may run per directory.`,
		Example: `  # Watch the current Dropbox folder
  dropignore watch ~/Dropbox/code

  # Use polling on a network filesystem
  dropignore watch --poll /mnt/share/Dropbox

  # Clear the flag on paths moved out of ignored locations
  dropignore watch --unmatched deselect ~/Dropbox/code`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], rules, poll)
		},
	}

	rules.register(cmd)
	cmd.Flags().BoolVar(&poll, "poll", false, "Poll for changes instead of using fsnotify")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, rules ruleOptions, poll bool) error {
	root, err := resolveDir(path)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if poll {
		cfg.Watch.Backend = watcher.BackendPolling
	}
	if err := rules.apply(cfg); err != nil {
		return err
	}

	session, err := lock.New(lock.DefaultDir(), root)
	if err != nil {
		return err
	}
	if err := session.TryLock(); err != nil {
		return err
	}
	defer func() { _ = session.Unlock() }()

	logger, sessionID := logging.WithSession(slog.Default())

	evaluator, err := loadEvaluator(cmd, cfg, root)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	src, err := watcher.NewHybridWatcher(cfg.WatchOptions())
	if err != nil {
		return derrors.New(derrors.ErrCodeWatchInit, "cannot create watcher", err)
	}

	eng := engine.New(evaluator, store, engine.WithLogger(logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.New(cmd.OutOrStdout())
	out.Statusf("👀", "Watching %s (%d rules, %s, store: %s)",
		root, evaluator.Rules.Len(), src.WatcherType(), cfg.Store.Backend)

	logger.Info("watch started",
		slog.String("root", root),
		slog.String("session", sessionID),
		slog.String("backend", src.WatcherType()),
		slog.String("store", cfg.Store.Backend),
		slog.Int("rules", evaluator.Rules.Len()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Closing the source also ends the engine's loop.
		defer func() { _ = src.Stop() }()
		if err := src.Start(gctx, root); err != nil && !errors.Is(err, context.Canceled) {
			return derrors.New(derrors.ErrCodeWatchInit, "cannot watch directory", err).
				WithDetail("root", root)
		}
		return nil
	})
	g.Go(func() error {
		return eng.Run(gctx, src)
	})
	err = g.Wait()

	stats := eng.Stats()
	logger.Info("watch stopped",
		slog.Uint64("events", stats.Events),
		slog.Uint64("selected", stats.Selected),
		slog.Uint64("deselected", stats.Deselected),
		slog.Uint64("failures", stats.Failures),
		slog.Uint64("dropped", src.DroppedEvents()))

	if err != nil {
		return err
	}
	out.Statusf("🛑", "Stopped: %d ignored, %d unignored, %d failed",
		stats.Selected, stats.Deselected, stats.Failures)
	return nil
}
