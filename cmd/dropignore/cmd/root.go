// Package cmd provides the CLI commands for dropignore.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dropignore/internal/config"
	derrors "github.com/Aman-CERP/dropignore/internal/errors"
	"github.com/Aman-CERP/dropignore/internal/flagstore"
	"github.com/Aman-CERP/dropignore/internal/ignorefile"
	"github.com/Aman-CERP/dropignore/internal/logging"
	"github.com/Aman-CERP/dropignore/pkg/version"
)

// Global flags
var (
	debugMode      bool
	configFile     string
	storeBackend   string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the dropignore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dropignore",
		Short: "Keep build output and caches out of Dropbox",
		Long: `dropignore sets the Dropbox "ignored" flag on paths that match the rules
in a .dropignore file, so the sync client leaves them alone.

Rules are gitignore-like: '*' and '?' stay inside one path segment, '**'
crosses segments, a trailing '/' only matches directories, and a rule
without a leading '/' matches at any depth.

Run 'dropignore sweep <dir>' once for existing files, then
'dropignore watch <dir>' to handle new ones as they appear.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("dropignore version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.dropignore/logs/")
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file applied after user and project config")
	cmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Flag store backend: xattr, sqlite, bolt, or memory")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIgnoreCmd())
	cmd.AddCommand(newUnignoreCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs the default logger: JSON to the rotating log file
// with --debug, text on stderr otherwise.
func startLogging(cmd *cobra.Command, _ []string) error {
	// Config problems are reported by the command that needs the config.
	cfg, err := config.Load("", configFile)
	if err != nil {
		cfg = config.NewConfig()
	}

	if !debugMode {
		slog.SetDefault(logging.NewConsoleLogger(cmd.ErrOrStderr(), cfg.Logging.Level))
		return nil
	}

	logCfg := logging.DebugConfig()
	if cfg.Logging.File != "" {
		logCfg.FilePath = cfg.Logging.File
	}
	logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
	logCfg.MaxFiles = cfg.Logging.MaxFiles

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return derrors.IOError("failed to setup debug logging", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled",
		slog.String("log_file", logCfg.FilePath),
		slog.String("version", version.Short()),
		slog.String("command", cmd.CommandPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		slog.Info("debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	_ = stopLogging(root, nil)
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

// printError prints coded errors with their hint and code, and plain
// errors (usage mistakes from cobra) as a single line.
func printError(w io.Writer, err error) {
	if derrors.GetCode(err) == "" {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprint(w, derrors.FormatForCLI(err))
}

// loadConfig resolves configuration for root and applies --store.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(root, configFile)
	if err != nil {
		return nil, derrors.ConfigError("failed to load configuration", err)
	}
	if storeBackend != "" {
		cfg.Store.Backend = storeBackend
		if err := cfg.Validate(); err != nil {
			return nil, derrors.ConfigError("invalid --store", err)
		}
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (flagstore.Store, error) {
	return flagstore.Open(cfg.StoreOptions())
}

// resolveDir returns the absolute form of path, which must be a directory.
func resolveDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", derrors.New(derrors.ErrCodeInvalidPath, "cannot resolve path", err).WithDetail("path", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", derrors.New(derrors.ErrCodeFileNotFound, "directory not found", err).WithDetail("path", abs)
	}
	if !info.IsDir() {
		return "", derrors.New(derrors.ErrCodeInvalidInput, fmt.Sprintf("%s is not a directory", abs), nil)
	}
	return abs, nil
}

// printLineErrors reports rules that were skipped, one per line.
func printLineErrors(w io.Writer, errs []*ignorefile.LineError) {
	for _, e := range errs {
		_, _ = fmt.Fprintln(w, e.Error())
	}
}

// quietLogger returns the default logger in debug mode and a discarding
// logger otherwise, for commands that print their own progress.
func quietLogger() *slog.Logger {
	if debugMode {
		return slog.Default()
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
